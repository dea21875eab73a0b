package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/session"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/workflow"
)

// Interactive flow steps stored in session state.
const (
	stepAddName       = "waiting_for_name"
	stepAddType       = "waiting_for_type"
	stepAddProxied    = "waiting_for_proxied"
	stepAddContent    = "waiting_for_content"
	stepUpdateSelect  = "waiting_for_record_selection"
	stepUpdateContent = "waiting_for_new_content"
)

// Session data keys shared between flow steps.
const (
	dataName     = "name"
	dataType     = "type"
	dataProxied  = "proxied"
	dataRecordID = "record_id"
)

// handleFlowInput routes free text to the step an interactive flow is
// waiting on. Text with no active flow is ignored.
func (b *Bot) handleFlowInput(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	conv := conversationKey(chatID)

	state, ok, err := b.sessions.Get(ctx, conv)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	if !ok {
		return
	}

	switch {
	case state.Flow == workflow.FlowAdd && state.Step == stepAddName:
		b.addFlowName(ctx, chatID, state.WithData(dataName, msg.Text))
	case state.Flow == workflow.FlowAdd && state.Step == stepAddContent:
		b.addFlowContent(ctx, chatID, state, msg.Text)
	case state.Flow == workflow.FlowUpdate && state.Step == stepUpdateContent:
		b.updateFlowContent(ctx, chatID, state, msg.Text)
	}
}

func (b *Bot) addFlowName(ctx context.Context, chatID int64, state session.State) {
	state.Step = stepAddType
	if err := b.sessions.Set(ctx, conversationKey(chatID), state, b.cfg.StateTTL); err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	b.replyWithKeyboard(chatID,
		fmt.Sprintf("Record name: <code>%s</code>\n\nSelect the record type:", html.EscapeString(state.Data[dataName])),
		recordTypesKeyboard())
}

func (b *Bot) addFlowContent(ctx context.Context, chatID int64, state session.State, content string) {
	conv := conversationKey(chatID)

	proxied, _ := strconv.ParseBool(state.Data[dataProxied])
	req := workflow.CreateRequest{
		Name:    state.Data[dataName],
		Type:    cloudflare.RecordType(state.Data[dataType]),
		Content: content,
		TTL:     cloudflare.TTLAuto,
		Proxied: proxied,
	}

	result, err := b.wf.Create(ctx, "", req)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}

	if err := b.sessions.Clear(ctx, conv); err != nil {
		b.log.WithError(err).Warn("clearing session after create")
	}
	b.reply(chatID, "✅ <b>Record Created Successfully!</b>\n\n"+formatRecord(result.Record, true))
}

func (b *Bot) updateFlowContent(ctx context.Context, chatID int64, state session.State, content string) {
	conv := conversationKey(chatID)

	recordID := state.Data[dataRecordID]
	if recordID == "" {
		b.reply(chatID, "❌ No record selected. Start over with /update.")
		return
	}

	record, err := b.cf.UpdateRecord(ctx, "", recordID, cloudflare.UpdateRecordParams{Content: &content})
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}

	if err := b.sessions.Clear(ctx, conv); err != nil {
		b.log.WithError(err).Warn("clearing session after update")
	}
	b.reply(chatID, "✅ <b>Record Updated Successfully!</b>\n\n"+formatRecord(record, true))
}
