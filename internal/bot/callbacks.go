package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/workflow"
)

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.answerCallback(query.ID, "")
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	data := query.Data

	switch {
	case data == cbNoop:
		b.answerCallback(query.ID, "")
	case data == cbCancel:
		b.callbackCancel(ctx, query, chatID, messageID)
	case strings.HasPrefix(data, cbType):
		b.callbackType(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbType))
	case strings.HasPrefix(data, cbProxied):
		b.callbackProxied(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbProxied))
	case strings.HasPrefix(data, cbConfirmDelete):
		b.callbackConfirmDelete(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbConfirmDelete))
	case strings.HasPrefix(data, cbUpdateSelect):
		b.callbackUpdateSelect(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbUpdateSelect))
	case strings.HasPrefix(data, cbUpdateDirect):
		b.callbackUpdateDirect(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbUpdateDirect))
	case strings.HasPrefix(data, cbDeleteSelect):
		b.callbackStageDelete(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbDeleteSelect))
	case strings.HasPrefix(data, cbDeleteConfirm):
		b.callbackStageDelete(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbDeleteConfirm))
	case strings.HasPrefix(data, cbToggleProxy):
		b.callbackToggleProxy(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbToggleProxy))
	case strings.HasPrefix(data, cbZone):
		b.callbackZone(ctx, query, chatID, messageID, strings.TrimPrefix(data, cbZone))
	default:
		b.answerCallback(query.ID, "")
	}
}

func (b *Bot) callbackError(query *tgbotapi.CallbackQuery, chatID int64, messageID int, err error) {
	b.answerCallback(query.ID, "")
	b.editMessage(chatID, messageID, renderError(err))
}

func (b *Bot) callbackCancel(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int) {
	if _, err := b.wf.Cancel(ctx, conversationKey(chatID)); err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}
	b.answerCallback(query.ID, "Cancelled")
	b.editMessage(chatID, messageID, "❌ Operation cancelled.")
}

// callbackType handles record type selection during the interactive add
// flow. Proxyable types get a proxy prompt first; everything else goes
// straight to content entry.
func (b *Bot) callbackType(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, typeName string) {
	conv := conversationKey(chatID)

	state, ok, err := b.sessions.Get(ctx, conv)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}
	if !ok || state.Flow != workflow.FlowAdd || state.Step != stepAddType {
		b.answerCallback(query.ID, "")
		b.editMessage(chatID, messageID, "❌ This selection has expired. Start over with /add.")
		return
	}

	rtype := cloudflare.RecordType(typeName)
	state = state.WithData(dataType, string(rtype))

	if rtype.Proxyable() {
		state.Step = stepAddProxied
		if err := b.sessions.Set(ctx, conv, state, b.cfg.StateTTL); err != nil {
			b.callbackError(query, chatID, messageID, err)
			return
		}
		b.answerCallback(query.ID, "")
		b.editWithKeyboard(chatID, messageID,
			fmt.Sprintf("Record type: <code>%s</code>\n\nShould this record be proxied through Cloudflare?", rtype),
			proxiedKeyboard())
		return
	}

	state = state.WithData(dataProxied, "false")
	state.Step = stepAddContent
	if err := b.sessions.Set(ctx, conv, state, b.cfg.StateTTL); err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}
	b.answerCallback(query.ID, "")
	b.editMessage(chatID, messageID,
		fmt.Sprintf("Record type: <code>%s</code>\n\nEnter the record content (e.g., IP address or target hostname):", rtype))
}

func (b *Bot) callbackProxied(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, value string) {
	conv := conversationKey(chatID)

	state, ok, err := b.sessions.Get(ctx, conv)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}
	if !ok || state.Flow != workflow.FlowAdd || state.Step != stepAddProxied {
		b.answerCallback(query.ID, "")
		b.editMessage(chatID, messageID, "❌ This selection has expired. Start over with /add.")
		return
	}

	state = state.WithData(dataProxied, value)
	state.Step = stepAddContent
	if err := b.sessions.Set(ctx, conv, state, b.cfg.StateTTL); err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}

	status := proxyOffIcon + " DNS only"
	if value == "true" {
		status = proxyOnIcon + " Proxied"
	}
	b.answerCallback(query.ID, "")
	b.editMessage(chatID, messageID,
		fmt.Sprintf("Proxy: %s\n\nEnter the record content (e.g., IP address or target hostname):", status))
}

func (b *Bot) callbackUpdateSelect(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, recordID string) {
	conv := conversationKey(chatID)

	record, err := b.cf.GetRecord(ctx, "", recordID)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}

	state, _, err := b.sessions.Get(ctx, conv)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}
	state.Flow = workflow.FlowUpdate
	state.Step = stepUpdateContent
	state = state.WithData(dataRecordID, recordID)
	if err := b.sessions.Set(ctx, conv, state, b.cfg.StateTTL); err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}

	b.answerCallback(query.ID, "")
	b.editMessage(chatID, messageID,
		fmt.Sprintf("✏️ <b>Updating Record</b>\n\n%s\n\nEnter the new content:", formatRecord(record, false)))
}

// callbackUpdateDirect applies a pending single-line update after the
// user picked one record from an ambiguous match set.
func (b *Bot) callbackUpdateDirect(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, recordID string) {
	result, err := b.wf.CompleteUpdate(ctx, conversationKey(chatID), "", recordID)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}

	b.answerCallback(query.ID, "")
	if result.Outcome == workflow.OutcomeRejected {
		b.editMessage(chatID, messageID, "❌ "+html.EscapeString(result.Message))
		return
	}
	b.editMessage(chatID, messageID, "✅ <b>Record Updated Successfully!</b>\n\n"+formatRecord(result.Record, true))
}

func (b *Bot) callbackStageDelete(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, recordID string) {
	result, err := b.wf.RequestDelete(ctx, conversationKey(chatID), "", recordID)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}

	b.answerCallback(query.ID, "")
	b.editWithKeyboard(chatID, messageID,
		"⚠️ <b>Confirm Deletion</b>\n\nAre you sure you want to delete this record?\n\n"+formatRecord(result.Record, true),
		confirmDeleteKeyboard(result.Record.ID))
}

func (b *Bot) callbackConfirmDelete(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, recordID string) {
	result, err := b.wf.ConfirmDelete(ctx, conversationKey(chatID), "", recordID)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}

	b.answerCallback(query.ID, "Deleted")
	b.editMessage(chatID, messageID,
		fmt.Sprintf("✅ <b>Record Deleted</b>\n\nName: <code>%s</code>\nType: %s\nContent: <code>%s</code>",
			html.EscapeString(result.Record.Name), result.Record.Type, html.EscapeString(result.Record.Content)))
}

func (b *Bot) callbackToggleProxy(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, recordID string) {
	result, err := b.wf.CompleteToggle(ctx, conversationKey(chatID), "", recordID)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}

	b.answerCallback(query.ID, "")
	if result.Outcome == workflow.OutcomeRejected {
		b.editMessage(chatID, messageID, "❌ "+html.EscapeString(result.Message))
		return
	}
	b.editMessage(chatID, messageID, formatToggleResult(result.Record))
}

func (b *Bot) callbackZone(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, zoneID string) {
	zone, err := b.cf.GetZone(ctx, zoneID)
	if err != nil {
		b.callbackError(query, chatID, messageID, err)
		return
	}
	b.cf.SetDefaultZone(zone.ID)

	b.answerCallback(query.ID, "Zone switched")
	b.editMessage(chatID, messageID,
		fmt.Sprintf("✅ <b>Switched to Zone</b>\n\nName: <code>%s</code>\nID: <code>%s</code>\n\nUse /list to see DNS records.",
			html.EscapeString(zone.Name), html.EscapeString(zone.ID)))
}
