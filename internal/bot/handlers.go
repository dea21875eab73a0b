package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/session"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/workflow"
)

const helpText = `📖 <b>Cloudflare DNS Bot - Help</b>

<b>LISTING RECORDS:</b>
<pre>
/list           - List all records
/list A         - List only A records
</pre>

<b>ADDING RECORDS:</b>
<pre>/add &lt;name&gt; &lt;type&gt; &lt;content&gt; [ttl] [proxied]</pre>
Examples:
• /add sub A 1.2.3.4
• /add sub A 1.2.3.4 3600 true
• /add www CNAME example.com

<b>UPDATING RECORDS:</b>
<pre>/update &lt;name&gt; &lt;content&gt; [ttl] [proxied]</pre>
Examples:
• /update sub 5.6.7.8
• /update sub 5.6.7.8 auto false

<b>DELETING RECORDS:</b>
<pre>/delete &lt;name&gt; [type]</pre>
Examples:
• /delete sub - Delete if only one record
• /delete sub A - Delete specific type

<b>OTHER COMMANDS:</b>
• /search query - Search by name
• /info name - Show record details
• /toggle_proxy name - Toggle CDN proxy
• /zones - List available zones
• /zone domain - Switch zone
• /export [type] - Export records as JSON
• /cancel - Cancel current operation

<b>INTERACTIVE MODE:</b>
Use /add, /update, or /delete without arguments for a guided flow.

<b>TIPS:</b>
• TTL: seconds (3600) or "auto"
• Proxied: "true"/"false" - only for A/AAAA/CNAME
• Name: short (sub) or full (sub.example.com)

<b>Record Types:</b> A, AAAA, CAA, CNAME, MX, NS, PTR, SRV, TXT`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.reply(chatID, helpText)
	case "list":
		b.handleList(ctx, chatID, args)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case "info":
		b.handleInfo(ctx, chatID, args)
	case "add":
		b.handleAdd(ctx, chatID, args)
	case "update":
		b.handleUpdateCmd(ctx, chatID, args)
	case "delete":
		b.handleDelete(ctx, chatID, args)
	case "toggle_proxy":
		b.handleToggleProxy(ctx, chatID, args)
	case "zones":
		b.handleZones(ctx, chatID)
	case "zone":
		b.handleZone(ctx, chatID, args)
	case "export":
		b.handleExport(ctx, chatID, args)
	case "cancel":
		b.handleCancel(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for usage.")
	}
}

// requireZone prompts for zone selection when no zone is active.
func (b *Bot) requireZone(chatID int64) bool {
	if b.cf.DefaultZone() != "" {
		return true
	}

	b.reply(chatID, "⚠️ <b>No zone selected!</b>\n\nPlease select a zone first:\n• /zones - List all your domains\n• /zone &lt;domain&gt; - Select by domain name")
	return false
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if b.cf.DefaultZone() != "" {
		zone, err := b.cf.GetZone(ctx, "")
		if err == nil {
			b.reply(chatID, fmt.Sprintf(
				"👋 <b>Cloudflare DNS Manager Bot</b>\n\n🌐 Current zone: <code>%s</code>\n\n"+
					"<b>Quick Commands:</b>\n"+
					"• /list - List all DNS records\n"+
					"• /add sub A 1.2.3.4 - Add record\n"+
					"• /update sub 5.6.7.8 - Update record\n"+
					"• /delete sub - Delete record\n"+
					"• /search keyword - Search records\n"+
					"• /zones - Switch domain\n"+
					"• /help - Full usage guide",
				html.EscapeString(zone.Name)))
			return
		}
		b.log.WithError(err).Warn("fetching active zone for /start")
	}

	zones, err := b.cf.ListZones(ctx)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	if len(zones) == 0 {
		b.reply(chatID, "👋 <b>Cloudflare DNS Manager Bot</b>\n\n❌ No zones found with your API token.")
		return
	}

	lines := []string{"👋 <b>Cloudflare DNS Manager Bot</b>\n", "⚠️ <b>Select a domain to manage:</b>"}
	for i, zone := range zones {
		if i == 15 {
			break
		}
		lines = append(lines, fmt.Sprintf("• <code>/zone %s</code>", html.EscapeString(zone.Name)))
	}
	lines = append(lines, "", "<i>Use /help for all commands</i>")
	b.reply(chatID, strings.Join(lines, "\n"))
}

func parseTypeArg(token string) (cloudflare.RecordType, error) {
	rtype := cloudflare.RecordType(strings.ToUpper(token))
	if !rtype.Valid() {
		return "", fmt.Errorf("Invalid record type: %s\nValid types: %s",
			token, strings.Join(cloudflare.RecordTypeNames(), ", "))
	}
	return rtype, nil
}

func (b *Bot) handleList(ctx context.Context, chatID int64, args []string) {
	if !b.requireZone(chatID) {
		return
	}

	var rtype cloudflare.RecordType
	if len(args) > 0 {
		parsed, err := parseTypeArg(args[0])
		if err != nil {
			b.reply(chatID, "❌ "+html.EscapeString(err.Error()))
			return
		}
		rtype = parsed
	}

	records, err := b.cf.ListAllRecords(ctx, "", rtype)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}

	title := "All DNS Records"
	if rtype != "" {
		title = string(rtype) + " Records"
	}
	b.reply(chatID, formatRecordsList(records, title))
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args []string) {
	if !b.requireZone(chatID) {
		return
	}
	if len(args) == 0 {
		b.reply(chatID, "❌ Usage: /search &lt;query&gt;\nExample: /search sub")
		return
	}

	records, err := b.cf.FindByName(ctx, "", args[0], "")
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	b.reply(chatID, formatRecordsList(records, fmt.Sprintf("Search Results for '%s'", args[0])))
}

func (b *Bot) handleInfo(ctx context.Context, chatID int64, args []string) {
	if !b.requireZone(chatID) {
		return
	}
	if len(args) == 0 {
		b.reply(chatID, "❌ Usage: /info &lt;record_name&gt;\nExample: /info sub.example.com")
		return
	}

	records, err := b.cf.FindByName(ctx, "", args[0], "")
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	if len(records) == 0 {
		b.reply(chatID, fmt.Sprintf("❌ No records found matching <code>%s</code>", html.EscapeString(args[0])))
		return
	}

	lines := []string{fmt.Sprintf("🔍 <b>Records matching '%s'</b>\n", html.EscapeString(args[0]))}
	for _, record := range records {
		lines = append(lines, formatRecord(record, true), "")
	}
	b.reply(chatID, strings.Join(lines, "\n"))
}

// parseAddArgs parses "/add name type content [ttl] [proxied]".
// Warnings flag tokens that parsed but probably not the way the user
// meant, like a proxied typo silently becoming false.
func parseAddArgs(args []string) (workflow.CreateRequest, []string, error) {
	req := workflow.CreateRequest{TTL: cloudflare.TTLAuto}
	var warnings []string

	if len(args) < 3 {
		return req, nil, fmt.Errorf("not enough arguments")
	}

	req.Name = args[0]
	rtype, err := parseTypeArg(args[1])
	if err != nil {
		return req, nil, err
	}
	req.Type = rtype
	req.Content = args[2]

	if len(args) > 3 {
		ttl, err := workflow.ParseTTL(args[3])
		if err != nil {
			return req, nil, err
		}
		req.TTL = ttl
	}

	if len(args) > 4 {
		proxied, recognized := workflow.ParseBool(args[4])
		if !recognized {
			warnings = append(warnings, fmt.Sprintf("unrecognized proxied value %q, treating it as false", args[4]))
		}
		req.Proxied = proxied
	}

	return req, warnings, nil
}

// parseUpdateArgs parses "/update name content [ttl] [proxied]".
func parseUpdateArgs(args []string) (workflow.UpdateRequest, []string, error) {
	var req workflow.UpdateRequest
	var warnings []string

	if len(args) < 2 {
		return req, nil, fmt.Errorf("not enough arguments")
	}

	req.Name = args[0]
	req.Content = args[1]

	if len(args) > 2 {
		ttl, err := workflow.ParseTTL(args[2])
		if err != nil {
			return req, nil, err
		}
		req.TTL = &ttl
	}

	if len(args) > 3 {
		proxied, recognized := workflow.ParseBool(args[3])
		if !recognized {
			warnings = append(warnings, fmt.Sprintf("unrecognized proxied value %q, treating it as false", args[3]))
		}
		req.Proxied = &proxied
	}

	return req, warnings, nil
}

func (b *Bot) sendWarnings(chatID int64, warnings []string) {
	for _, warning := range warnings {
		b.reply(chatID, "⚠️ "+html.EscapeString(warning))
	}
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args []string) {
	if !b.requireZone(chatID) {
		return
	}

	if len(args) == 0 {
		state := session.State{Flow: workflow.FlowAdd, Step: stepAddName}
		if err := b.sessions.Set(ctx, conversationKey(chatID), state, b.cfg.StateTTL); err != nil {
			b.reply(chatID, renderError(err))
			return
		}
		b.replyWithKeyboard(chatID,
			"📝 <b>Add DNS Record</b> (Interactive Mode)\n\nEnter the record name (e.g., <code>sub</code> or <code>sub.example.com</code>):\n\n"+
				"<i>Or use single-line command:</i>\n<code>/add name type content [ttl] [proxied]</code>",
			cancelKeyboard())
		return
	}

	req, warnings, err := parseAddArgs(args)
	if err != nil {
		b.reply(chatID, "❌ "+html.EscapeString(err.Error())+"\n\nUsage: /add &lt;name&gt; &lt;type&gt; &lt;content&gt; [ttl] [proxied]")
		return
	}
	b.sendWarnings(chatID, warnings)

	result, err := b.wf.Create(ctx, "", req)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	b.reply(chatID, "✅ <b>Record Created Successfully!</b>\n\n"+formatRecord(result.Record, true))
}

func (b *Bot) handleUpdateCmd(ctx context.Context, chatID int64, args []string) {
	if !b.requireZone(chatID) {
		return
	}
	conv := conversationKey(chatID)

	if len(args) == 0 {
		records, err := b.cf.ListAllRecords(ctx, "", "")
		if err != nil {
			b.reply(chatID, renderError(err))
			return
		}
		if len(records) == 0 {
			b.reply(chatID, "❌ No DNS records found.")
			return
		}

		state := session.State{Flow: workflow.FlowUpdate, Step: stepUpdateSelect}
		if err := b.sessions.Set(ctx, conv, state, b.cfg.StateTTL); err != nil {
			b.reply(chatID, renderError(err))
			return
		}
		b.replyWithKeyboard(chatID,
			"✏️ <b>Update DNS Record</b> (Interactive Mode)\n\nSelect a record to update:",
			recordsKeyboard(records, cbUpdateSelect))
		return
	}

	req, warnings, err := parseUpdateArgs(args)
	if err != nil {
		b.reply(chatID, "❌ "+html.EscapeString(err.Error())+"\n\nUsage: /update &lt;name&gt; &lt;content&gt; [ttl] [proxied]")
		return
	}
	b.sendWarnings(chatID, warnings)

	result, err := b.wf.Update(ctx, conv, "", req)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}

	switch result.Outcome {
	case workflow.OutcomeNotFound:
		b.reply(chatID, fmt.Sprintf("❌ No record found matching <code>%s</code>", html.EscapeString(req.Name)))
	case workflow.OutcomeNeedsDisambiguation:
		b.replyWithKeyboard(chatID,
			fmt.Sprintf("⚠️ Found %d records matching <code>%s</code>.\nPlease select which one to update:",
				len(result.Matches), html.EscapeString(req.Name)),
			recordsKeyboard(result.Matches, cbUpdateDirect))
	case workflow.OutcomeUpdated:
		b.reply(chatID, "✅ <b>Record Updated Successfully!</b>\n\n"+formatRecord(result.Record, true))
	}
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, args []string) {
	if !b.requireZone(chatID) {
		return
	}
	conv := conversationKey(chatID)

	if len(args) == 0 {
		records, err := b.cf.ListAllRecords(ctx, "", "")
		if err != nil {
			b.reply(chatID, renderError(err))
			return
		}
		if len(records) == 0 {
			b.reply(chatID, "❌ No DNS records found.")
			return
		}
		b.replyWithKeyboard(chatID,
			"🗑️ <b>Delete DNS Record</b> (Interactive Mode)\n\nSelect a record to delete:",
			recordsKeyboard(records, cbDeleteSelect))
		return
	}

	name := args[0]
	var rtype cloudflare.RecordType
	if len(args) > 1 {
		parsed, err := parseTypeArg(args[1])
		if err != nil {
			b.reply(chatID, "❌ "+html.EscapeString(err.Error()))
			return
		}
		rtype = parsed
	}

	result, err := b.wf.Delete(ctx, conv, "", name, rtype)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}

	switch result.Outcome {
	case workflow.OutcomeNotFound:
		text := fmt.Sprintf("❌ No record found matching <code>%s</code>", html.EscapeString(name))
		if rtype != "" {
			text += fmt.Sprintf(" with type <code>%s</code>", rtype)
		}
		b.reply(chatID, text)
	case workflow.OutcomeNeedsDisambiguation:
		b.replyWithKeyboard(chatID,
			fmt.Sprintf("⚠️ Found %d records matching <code>%s</code>.\nSelect which one to delete or specify type:\n<code>/delete %s TYPE</code>",
				len(result.Matches), html.EscapeString(name), html.EscapeString(name)),
			recordsKeyboard(result.Matches, cbDeleteConfirm))
	case workflow.OutcomeNeedsConfirmation:
		b.replyWithKeyboard(chatID,
			"⚠️ <b>Confirm Deletion</b>\n\nAre you sure you want to delete this record?\n\n"+formatRecord(result.Record, true),
			confirmDeleteKeyboard(result.Record.ID))
	}
}

func (b *Bot) handleToggleProxy(ctx context.Context, chatID int64, args []string) {
	if !b.requireZone(chatID) {
		return
	}
	if len(args) == 0 {
		b.reply(chatID, "❌ Usage: /toggle_proxy &lt;name&gt;\nExample: /toggle_proxy sub.example.com")
		return
	}

	result, err := b.wf.ToggleProxy(ctx, conversationKey(chatID), "", args[0])
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}

	switch result.Outcome {
	case workflow.OutcomeNotFound:
		b.reply(chatID, fmt.Sprintf("❌ No record found matching <code>%s</code>", html.EscapeString(args[0])))
	case workflow.OutcomeRejected:
		b.reply(chatID, "❌ "+html.EscapeString(result.Message))
	case workflow.OutcomeNeedsDisambiguation:
		b.replyWithKeyboard(chatID,
			fmt.Sprintf("⚠️ Found %d proxyable records matching <code>%s</code>.\nSelect which one to toggle:",
				len(result.Matches), html.EscapeString(args[0])),
			recordsKeyboard(result.Matches, cbToggleProxy))
	case workflow.OutcomeToggled:
		b.reply(chatID, formatToggleResult(result.Record))
	}
}

func formatToggleResult(record cloudflare.Record) string {
	status := proxyOffIcon + " DNS Only"
	if record.Proxied {
		status = proxyOnIcon + " Proxied"
	}
	return fmt.Sprintf("✅ <b>Proxy Status Toggled!</b>\n\nRecord: <code>%s</code>\nNew status: %s",
		html.EscapeString(record.Name), status)
}

func (b *Bot) handleZones(ctx context.Context, chatID int64) {
	zones, err := b.cf.ListZones(ctx)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	if len(zones) == 0 {
		b.reply(chatID, "❌ No zones found.")
		return
	}

	var current cloudflare.Zone
	if b.cf.DefaultZone() != "" {
		if zone, err := b.cf.GetZone(ctx, ""); err == nil {
			current = zone
		}
	}
	b.replyWithKeyboard(chatID, formatZones(zones, current), zonesKeyboard(zones))
}

func (b *Bot) handleZone(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		if b.cf.DefaultZone() == "" {
			b.reply(chatID, "⚠️ <b>No zone selected</b>\n\nUse /zones to see available domains\nThen /zone example.com to select one")
			return
		}
		zone, err := b.cf.GetZone(ctx, "")
		if err != nil {
			b.reply(chatID, renderError(err))
			return
		}
		b.reply(chatID, fmt.Sprintf(
			"🌐 <b>Current Zone</b>\n\nName: <code>%s</code>\nID: <code>%s</code>\nStatus: %s\n\n<i>Use /zone domain to switch zones</i>",
			html.EscapeString(zone.Name), html.EscapeString(zone.ID), zone.Status))
		return
	}

	target := args[0]

	// A short token with a dot reads as a domain name; anything else is
	// taken as a zone id.
	if strings.Contains(target, ".") && len(target) < 32 {
		zone, err := b.cf.ZoneByName(ctx, target)
		if err != nil {
			if cloudflare.IsNotFound(err) {
				b.reply(chatID, fmt.Sprintf("❌ Zone not found: <code>%s</code>\n\nUse /zones to see available domains.", html.EscapeString(target)))
				return
			}
			b.reply(chatID, renderError(err))
			return
		}
		b.cf.SetDefaultZone(zone.ID)
		b.reply(chatID, fmt.Sprintf("✅ <b>Switched to Zone</b>\n\nName: <code>%s</code>\nID: <code>%s</code>",
			html.EscapeString(zone.Name), html.EscapeString(zone.ID)))
		return
	}

	previous := b.cf.DefaultZone()
	b.cf.SetDefaultZone(target)
	zone, err := b.cf.GetZone(ctx, "")
	if err != nil {
		b.cf.SetDefaultZone(previous)
		b.reply(chatID, renderError(err)+"\nMake sure the zone ID is correct.\n\nUse /zones to see available domains.")
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ <b>Switched to Zone</b>\n\nName: <code>%s</code>\nID: <code>%s</code>",
		html.EscapeString(zone.Name), html.EscapeString(zone.ID)))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, args []string) {
	if !b.requireZone(chatID) {
		return
	}

	var rtype cloudflare.RecordType
	if len(args) > 0 {
		parsed, err := parseTypeArg(args[0])
		if err != nil {
			b.reply(chatID, "❌ "+html.EscapeString(err.Error()))
			return
		}
		rtype = parsed
	}

	records, err := b.cf.ListAllRecords(ctx, "", rtype)
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	if len(records) == 0 {
		b.reply(chatID, "❌ No records to export.")
		return
	}
	b.reply(chatID, formatExport(records))
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	active, err := b.wf.Cancel(ctx, conversationKey(chatID))
	if err != nil {
		b.reply(chatID, renderError(err))
		return
	}
	if active {
		b.reply(chatID, "❌ Operation cancelled.")
		return
	}
	b.reply(chatID, "ℹ️ No active operation to cancel.")
}
