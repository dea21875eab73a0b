// Package session holds short-lived per-conversation flow state. Each
// conversation owns exactly one slot; starting a new flow overwrites
// whatever was there, and every write carries an expiry so abandoned
// flows do not linger.
package session

import (
	"context"
	"time"
)

// DefaultTTL bounds how long an unfinished flow, including a pending
// disambiguation, survives without further input.
const DefaultTTL = 10 * time.Minute

// PendingMutation captures update parameters at the moment a command
// matched more than one record, so the values applied after the user
// picks a record are exactly the ones they typed.
type PendingMutation struct {
	Content string `json:"content"`
	TTL     *int   `json:"ttl,omitempty"`
	Proxied *bool  `json:"proxied,omitempty"`
}

// State is the single per-conversation register: the active flow, the
// current step, accumulated step input, and an optional pending
// mutation awaiting disambiguation.
type State struct {
	Flow    string            `json:"flow"`
	Step    string            `json:"step"`
	Data    map[string]string `json:"data,omitempty"`
	Pending *PendingMutation  `json:"pending,omitempty"`
}

// WithData returns a copy of the state with key set in its payload.
func (s State) WithData(key, value string) State {
	data := make(map[string]string, len(s.Data)+1)
	for k, v := range s.Data {
		data[k] = v
	}
	data[key] = value
	s.Data = data
	return s
}

// Store is the conversation-keyed state register. Implementations must
// expire entries after the TTL given at Set time. Single-writer access
// per key is assumed; the transport serializes events per conversation.
type Store interface {
	Get(ctx context.Context, key string) (State, bool, error)
	Set(ctx context.Context, key string, state State, ttl time.Duration) error
	Clear(ctx context.Context, key string) error
}
