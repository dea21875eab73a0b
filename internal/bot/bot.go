// Package bot is the Telegram transport: it receives commands and
// button presses, hands them to the mutation workflow, and renders the
// results. All decision logic lives in internal/workflow; everything
// here is I/O glue.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/session"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/workflow"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type Config struct {
	Token          string
	Proxy          string
	Debug          bool
	AllowedUserIDs []int64
	StateTTL       time.Duration

	UseWebhook    bool
	WebhookURL    string
	WebhookPath   string
	ListenAddr    string
	WebhookSecret string
}

type Bot struct {
	api      *tgbotapi.BotAPI
	cf       *cloudflare.Client
	wf       *workflow.Workflow
	sessions session.Store
	allowed  map[int64]bool
	cfg      Config
	log      *logrus.Entry
}

func New(cfg Config, cf *cloudflare.Client, wf *workflow.Workflow, sessions session.Store, log *logrus.Entry) (*Bot, error) {
	httpClient, err := telegramHTTPClient(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	api.Debug = cfg.Debug

	allowed := make(map[int64]bool, len(cfg.AllowedUserIDs))
	for _, id := range cfg.AllowedUserIDs {
		allowed[id] = true
	}

	if cfg.StateTTL <= 0 {
		cfg.StateTTL = session.DefaultTTL
	}

	return &Bot{
		api:      api,
		cf:       cf,
		wf:       wf,
		sessions: sessions,
		allowed:  allowed,
		cfg:      cfg,
		log:      log.WithField("bot", api.Self.UserName),
	}, nil
}

// Run receives updates until the context is cancelled. Each update is
// handled on its own goroutine; per-conversation ordering is Telegram's
// concern, not ours.
func (b *Bot) Run(ctx context.Context) error {
	var updates tgbotapi.UpdatesChannel
	if b.cfg.UseWebhook {
		ch, err := b.startWebhook(ctx)
		if err != nil {
			return err
		}
		updates = ch
	} else {
		if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			return fmt.Errorf("deleting webhook: %w", err)
		}
		cfg := tgbotapi.NewUpdate(0)
		cfg.Timeout = 30
		updates = b.api.GetUpdatesChan(cfg)
		b.log.Info("polling for updates")
	}

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) startWebhook(ctx context.Context) (tgbotapi.UpdatesChannel, error) {
	wh, err := tgbotapi.NewWebhook(b.cfg.WebhookURL + b.cfg.WebhookPath)
	if err != nil {
		return nil, fmt.Errorf("building webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return nil, fmt.Errorf("setting webhook: %w", err)
	}

	updates := make(chan tgbotapi.Update, 64)
	mux := http.NewServeMux()
	mux.HandleFunc(b.cfg.WebhookPath, func(w http.ResponseWriter, r *http.Request) {
		if b.cfg.WebhookSecret != "" && r.Header.Get(secretTokenHeader) != b.cfg.WebhookSecret {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			b.log.WithError(err).Warn("rejecting malformed webhook update")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		updates <- *update
	})

	server := &http.Server{Addr: b.cfg.ListenAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		close(updates)
	}()
	go func() {
		b.log.WithField("addr", b.cfg.ListenAddr).Info("webhook server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			b.log.WithError(err).Error("webhook server failed")
		}
	}()

	return updates, nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithField("panic", r).Error("recovered while handling update")
		}
	}()

	switch {
	case update.Message != nil:
		if !b.authorize(update.Message.From, update.Message.Chat.ID) {
			return
		}
		if update.Message.IsCommand() {
			b.handleCommand(ctx, update.Message)
			return
		}
		b.handleFlowInput(ctx, update.Message)

	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.From == nil || !b.allowed[query.From.ID] {
			if _, err := b.api.Request(unauthorizedAlert(query.ID)); err != nil {
				b.log.WithError(err).Error("answering callback query")
			}
			return
		}
		b.handleCallback(ctx, query)
	}
}

// authorize enforces the user whitelist before any handler runs.
func (b *Bot) authorize(from *tgbotapi.User, chatID int64) bool {
	if from == nil {
		b.log.Warn("update without user information")
		return false
	}
	if b.allowed[from.ID] {
		return true
	}

	b.log.WithField("user", from.ID).Warn("unauthorized access attempt")
	b.reply(chatID, fmt.Sprintf("⛔ Unauthorized. You are not allowed to use this bot.\nYour user ID: <code>%d</code>", from.ID))
	return false
}

// conversationKey is the session key for one chat.
func conversationKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat", chatID).Error("sending message")
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat", chatID).Error("sending message")
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		b.log.WithError(err).WithField("chat", chatID).Error("editing message")
	}
}

func (b *Bot) editWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		b.log.WithError(err).WithField("chat", chatID).Error("editing message")
	}
}

// unauthorizedAlert blocks a stranger's button press with a modal
// alert rather than a dismissable toast.
func unauthorizedAlert(queryID string) tgbotapi.CallbackConfig {
	return tgbotapi.NewCallbackWithAlert(queryID, "⛔ Unauthorized")
}

func (b *Bot) answerCallback(queryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		b.log.WithError(err).Error("answering callback query")
	}
}
