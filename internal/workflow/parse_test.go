package workflow

import (
	"testing"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
)

func TestParseTTL(t *testing.T) {
	cases := []struct {
		token   string
		want    int
		wantErr bool
	}{
		{"auto", cloudflare.TTLAuto, false},
		{"AUTO", cloudflare.TTLAuto, false},
		{"3600", 3600, false},
		{"1", 1, false},
		{"abc", 0, true},
		{"3600s", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseTTL(tc.token)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTTL(%q): expected error, got %d", tc.token, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTTL(%q): %v", tc.token, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTTL(%q) = %d, want %d", tc.token, got, tc.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "TRUE", "yes", "YES", "1", "on", "ON", "y", "Y"}
	for _, token := range truthy {
		value, recognized := ParseBool(token)
		if !value || !recognized {
			t.Errorf("ParseBool(%q) = %v/%v, want true/true", token, value, recognized)
		}
	}

	falsy := []string{"false", "no", "0", "off", "n", "OFF"}
	for _, token := range falsy {
		value, recognized := ParseBool(token)
		if value || !recognized {
			t.Errorf("ParseBool(%q) = %v/%v, want false/true", token, value, recognized)
		}
	}

	// Typos parse as false but are flagged unrecognized so callers can
	// warn instead of silently disabling the proxy.
	typos := []string{"tru", "yess", "proxied", "t", ""}
	for _, token := range typos {
		value, recognized := ParseBool(token)
		if value || recognized {
			t.Errorf("ParseBool(%q) = %v/%v, want false/false", token, value, recognized)
		}
	}
}
