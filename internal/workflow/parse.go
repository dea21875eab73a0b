package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
)

// ParseTTL turns a user-typed TTL token into seconds. "auto" maps to
// the provider's automatic-TTL sentinel; anything else must be a plain
// integer. The error is a local validation failure, raised before any
// network call.
func ParseTTL(token string) (int, error) {
	if strings.EqualFold(token, "auto") {
		return cloudflare.TTLAuto, nil
	}

	ttl, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL %q: use a number of seconds or \"auto\"", token)
	}
	return ttl, nil
}

var truthyTokens = map[string]bool{
	"true": true, "yes": true, "1": true, "on": true, "y": true,
}

var falsyTokens = map[string]bool{
	"false": true, "no": true, "0": true, "off": true, "n": true,
}

// ParseBool matches token case-insensitively against a fixed truthy
// set. Every other token parses as false; recognized is false for
// tokens outside both the truthy and falsy sets so callers can warn the
// user that a typo silently became false.
func ParseBool(token string) (value, recognized bool) {
	lower := strings.ToLower(token)
	if truthyTokens[lower] {
		return true, true
	}
	return false, falsyTokens[lower]
}
