package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
)

// maxKeyboardRecords caps how many records a picker shows.
const maxKeyboardRecords = 20

// Callback data prefixes. Payload follows the last colon.
const (
	cbCancel        = "cancel"
	cbNoop          = "noop"
	cbType          = "type:"
	cbProxied       = "proxied:"
	cbUpdateSelect  = "update_select:"
	cbUpdateDirect  = "update_direct:"
	cbDeleteSelect  = "delete_select:"
	cbDeleteConfirm = "delete_confirm:"
	cbConfirmDelete = "confirm:delete:"
	cbToggleProxy   = "toggle_proxy:"
	cbZone          = "zone:"
)

func cancelButton() tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbCancel)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(cancelButton()))
}

// recordTypesKeyboard offers the common types during the interactive
// add flow, three per row.
func recordTypesKeyboard() tgbotapi.InlineKeyboardMarkup {
	types := []string{"A", "AAAA", "CNAME", "TXT", "MX", "NS"}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, rtype := range types {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(rtype, cbType+rtype))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(cancelButton()))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// recordsKeyboard builds a one-per-row record picker; action is the
// callback prefix applied to each record id.
func recordsKeyboard(records []cloudflare.Record, action string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	shown := records
	if len(shown) > maxKeyboardRecords {
		shown = shown[:maxKeyboardRecords]
	}

	for _, record := range shown {
		name := record.Name
		if runes := []rune(name); len(runes) > 30 {
			name = string(runes[:27]) + "..."
		}
		label := string(record.Type) + ": " + name
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, action+record.ID)))
	}

	if len(records) > maxKeyboardRecords {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("... and more", cbNoop)))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(cancelButton()))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmDeleteKeyboard(recordID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", cbConfirmDelete+recordID),
		cancelButton(),
	))
}

func proxiedKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟠 Proxied (CDN on)", cbProxied+"true"),
			tgbotapi.NewInlineKeyboardButtonData("⚪ DNS only", cbProxied+"false"),
		),
		tgbotapi.NewInlineKeyboardRow(cancelButton()),
	)
}

func zonesKeyboard(zones []cloudflare.Zone) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	shown := zones
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, zone := range shown {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(zone.Name, cbZone+zone.ID)))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(cancelButton()))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
