package bot

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
)

const (
	proxyOnIcon  = "🟠"
	proxyOffIcon = "⚪"
)

// exportLimit keeps exported JSON inside Telegram's message size cap.
const exportLimit = 3900

func ttlString(ttl int) string {
	if ttl == cloudflare.TTLAuto {
		return "Auto"
	}
	return fmt.Sprintf("%ds", ttl)
}

func proxyIcon(proxied bool) string {
	if proxied {
		return proxyOnIcon
	}
	return proxyOffIcon
}

// formatRecord renders one record as HTML, compact for lists or
// detailed for single-record views.
func formatRecord(record cloudflare.Record, detailed bool) string {
	name := html.EscapeString(record.Name)
	content := html.EscapeString(record.Content)

	if !detailed {
		return fmt.Sprintf("%s <code>%-5s</code> %s → <code>%s</code> (TTL: %s)",
			proxyIcon(record.Proxied), record.Type, name, content, ttlString(record.TTL))
	}

	proxiedText := "No"
	if record.Proxied {
		proxiedText = "Yes"
	}

	created := "N/A"
	if !record.CreatedOn.IsZero() {
		created = humanize.Time(record.CreatedOn)
	}
	modified := "N/A"
	if !record.ModifiedOn.IsZero() {
		modified = humanize.Time(record.ModifiedOn)
	}

	lines := []string{
		fmt.Sprintf("📝 <b>%s</b>", name),
		fmt.Sprintf("├ Type: <code>%s</code>", record.Type),
		fmt.Sprintf("├ Content: <code>%s</code>", content),
		fmt.Sprintf("├ TTL: %s", ttlString(record.TTL)),
		fmt.Sprintf("├ Proxied: %s %s", proxyIcon(record.Proxied), proxiedText),
	}
	if record.Type == cloudflare.RecordTypeMX {
		lines = append(lines, fmt.Sprintf("├ Priority: %d", record.Priority))
	}
	lines = append(lines,
		fmt.Sprintf("├ ID: <code>%s</code>", html.EscapeString(record.ID)),
		fmt.Sprintf("├ Created: %s", created),
		fmt.Sprintf("└ Modified: %s", modified),
	)
	return strings.Join(lines, "\n")
}

func formatRecordsList(records []cloudflare.Record, title string) string {
	if len(records) == 0 {
		return fmt.Sprintf("📋 <b>%s</b>\n\nNo records found.", html.EscapeString(title))
	}

	lines := []string{fmt.Sprintf("📋 <b>%s</b> (%d records)\n", html.EscapeString(title), len(records))}
	for _, record := range records {
		lines = append(lines, formatRecord(record, false))
	}
	return strings.Join(lines, "\n")
}

func formatZones(zones []cloudflare.Zone, current cloudflare.Zone) string {
	lines := []string{"🌐 <b>Available Zones</b>\n"}
	if current.ID != "" {
		lines = append(lines, fmt.Sprintf("📍 Current: <code>%s</code>\n", html.EscapeString(current.Name)))
	}

	for _, zone := range zones {
		marker := "• "
		if zone.ID == current.ID {
			marker = "→ "
		}
		lines = append(lines, fmt.Sprintf("%s<code>%s</code> - %s", marker, html.EscapeString(zone.Name), zone.Status))
	}

	lines = append(lines, "", "<b>Switch zone:</b>", "• /zone example.com - by domain name")
	return strings.Join(lines, "\n")
}

// exportedRecord is the trimmed shape used by /export.
type exportedRecord struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

func formatExport(records []cloudflare.Record) string {
	export := make([]exportedRecord, 0, len(records))
	for _, record := range records {
		export = append(export, exportedRecord{
			Name:    record.Name,
			Type:    string(record.Type),
			Content: record.Content,
			TTL:     record.TTL,
			Proxied: record.Proxied,
		})
	}

	raw, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Sprintf("❌ Export failed: %v", err)
	}

	text := string(raw)
	suffix := ""
	if len(text) > exportLimit {
		text = text[:exportLimit]
		suffix = "\n...(truncated)"
	}
	return fmt.Sprintf("📦 <b>Export</b> (%d records)\n\n<pre>%s%s</pre>",
		len(records), html.EscapeString(text), suffix)
}

// renderError maps a failure to a user-facing message. Validation and
// provider rejections carry the provider's own words; transport
// failures get a generic retry suggestion.
func renderError(err error) string {
	if cloudflare.IsTransport(err) {
		return "❌ " + html.EscapeString(err.Error()) + "\nPlease try again."
	}
	return "❌ Error: " + html.EscapeString(err.Error())
}
