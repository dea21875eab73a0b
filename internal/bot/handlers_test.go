package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
)

func TestParseAddArgs(t *testing.T) {
	req, warnings, err := parseAddArgs([]string{"sub", "a", "1.2.3.4"})
	if err != nil {
		t.Fatalf("parseAddArgs: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if req.Name != "sub" || req.Type != cloudflare.RecordTypeA || req.Content != "1.2.3.4" {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.TTL != cloudflare.TTLAuto {
		t.Errorf("TTL = %d, want auto default", req.TTL)
	}
	if req.Proxied {
		t.Error("proxied should default to false")
	}
}

func TestParseAddArgs_TTLAndProxied(t *testing.T) {
	req, warnings, err := parseAddArgs([]string{"sub", "A", "1.2.3.4", "3600", "true"})
	if err != nil {
		t.Fatalf("parseAddArgs: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if req.TTL != 3600 || !req.Proxied {
		t.Errorf("unexpected request: %+v", req)
	}

	req, _, err = parseAddArgs([]string{"sub", "A", "1.2.3.4", "auto"})
	if err != nil {
		t.Fatalf("parseAddArgs with auto TTL: %v", err)
	}
	if req.TTL != cloudflare.TTLAuto {
		t.Errorf("TTL = %d, want %d for auto", req.TTL, cloudflare.TTLAuto)
	}
}

func TestParseAddArgs_UnrecognizedProxiedWarns(t *testing.T) {
	req, warnings, err := parseAddArgs([]string{"sub", "A", "1.2.3.4", "auto", "tru"})
	if err != nil {
		t.Fatalf("parseAddArgs: %v", err)
	}
	if req.Proxied {
		t.Error("unrecognized token must parse as false")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "tru") {
		t.Errorf("expected a warning naming the bad token, got %v", warnings)
	}
}

func TestParseAddArgs_Errors(t *testing.T) {
	if _, _, err := parseAddArgs([]string{"sub", "A"}); err == nil {
		t.Error("expected error for missing content")
	}
	if _, _, err := parseAddArgs([]string{"sub", "BOGUS", "1.2.3.4"}); err == nil {
		t.Error("expected error for invalid type")
	}
	if _, _, err := parseAddArgs([]string{"sub", "A", "1.2.3.4", "soon"}); err == nil {
		t.Error("expected error for unparseable TTL")
	}
}

func TestParseUpdateArgs(t *testing.T) {
	req, _, err := parseUpdateArgs([]string{"sub", "5.6.7.8"})
	if err != nil {
		t.Fatalf("parseUpdateArgs: %v", err)
	}
	if req.Name != "sub" || req.Content != "5.6.7.8" {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.TTL != nil || req.Proxied != nil {
		t.Error("omitted fields must stay nil so existing values survive the merge")
	}

	req, _, err = parseUpdateArgs([]string{"sub", "5.6.7.8", "auto", "false"})
	if err != nil {
		t.Fatalf("parseUpdateArgs with options: %v", err)
	}
	if req.TTL == nil || *req.TTL != cloudflare.TTLAuto {
		t.Errorf("TTL = %v, want auto", req.TTL)
	}
	if req.Proxied == nil || *req.Proxied {
		t.Errorf("Proxied = %v, want false", req.Proxied)
	}
}

func TestParseTypeArg(t *testing.T) {
	rtype, err := parseTypeArg("cname")
	if err != nil {
		t.Fatalf("parseTypeArg: %v", err)
	}
	if rtype != cloudflare.RecordTypeCNAME {
		t.Errorf("rtype = %s, want CNAME", rtype)
	}

	if _, err := parseTypeArg("HTTP"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestRecordsKeyboard_Truncation(t *testing.T) {
	records := make([]cloudflare.Record, maxKeyboardRecords+5)
	for i := range records {
		records[i] = cloudflare.Record{
			ID:      "rec",
			Name:    "host.example.com",
			Type:    cloudflare.RecordTypeA,
			Content: "192.0.2.1",
		}
	}

	kb := recordsKeyboard(records, cbDeleteSelect)
	// record rows, overflow marker, cancel row
	if len(kb.InlineKeyboard) != maxKeyboardRecords+2 {
		t.Errorf("rows = %d, want %d", len(kb.InlineKeyboard), maxKeyboardRecords+2)
	}
	last := kb.InlineKeyboard[len(kb.InlineKeyboard)-2][0]
	if last.CallbackData == nil || *last.CallbackData != cbNoop {
		t.Error("overflow marker row must be a no-op button")
	}
}

func TestRecordsKeyboard_TruncatesLongNamesByRune(t *testing.T) {
	name := strings.Repeat("ж", 35) + ".example.com"
	records := []cloudflare.Record{{
		ID:      "rec1",
		Name:    name,
		Type:    cloudflare.RecordTypeA,
		Content: "192.0.2.1",
	}}

	kb := recordsKeyboard(records, cbDeleteSelect)
	label := kb.InlineKeyboard[0][0].Text

	if !utf8.ValidString(label) {
		t.Fatalf("truncated label is not valid UTF-8: %q", label)
	}
	want := "A: " + strings.Repeat("ж", 27) + "..."
	if label != want {
		t.Errorf("label = %q, want %q", label, want)
	}
}

func TestUnauthorizedAlert(t *testing.T) {
	cb := unauthorizedAlert("query42")
	if !cb.ShowAlert {
		t.Error("unauthorized answer must be a modal alert")
	}
	if cb.CallbackQueryID != "query42" || !strings.Contains(cb.Text, "Unauthorized") {
		t.Errorf("unexpected callback config: %+v", cb)
	}
}
