// Package workflow is the decision core: given a user-named target and
// a desired change, resolve the name to zero, one, or many records and
// either act, ask for confirmation, or ask the user to disambiguate.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
	"github.com/tempusbreve/cloudflare-dns-bot/internal/session"
)

// Flow names stored in session state.
const (
	FlowAdd    = "add"
	FlowUpdate = "update"
	FlowDelete = "delete"
	FlowToggle = "toggle_proxy"
)

// Steps of the disambiguation and confirmation sub-flows.
const (
	StepDisambiguation = "awaiting_disambiguation"
	StepConfirmDelete  = "awaiting_delete_confirmation"
)

const dataRecordID = "record_id"

// Outcome is the result of running one mutation request through the
// decision tree.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
	OutcomeDeleted
	OutcomeToggled
	// OutcomeNotFound: zero matches, no mutation attempted.
	OutcomeNotFound
	// OutcomeNeedsConfirmation: exactly one match for an irreversible
	// operation; nothing happens until the user confirms.
	OutcomeNeedsConfirmation
	// OutcomeNeedsDisambiguation: several matches; the intended change is
	// parked in session state until the user picks a record.
	OutcomeNeedsDisambiguation
	// OutcomeRejected: the operation cannot apply to the matched record.
	OutcomeRejected
)

// Result carries the outcome plus whatever the rendering layer needs:
// the acted-on record, the candidate set, or a user-facing message.
type Result struct {
	Outcome Outcome
	Record  cloudflare.Record
	Matches []cloudflare.Record
	Message string
}

// Workflow orchestrates record mutations. It never mutates when the
// target is ambiguous, and it never retries a failed provider call.
type Workflow struct {
	api      API
	resolver *Resolver
	sessions session.Store
	stateTTL time.Duration
	log      *logrus.Entry
}

func WithStateTTL(ttl time.Duration) func(*Workflow) {
	return func(w *Workflow) { w.stateTTL = ttl }
}

func WithLogger(log *logrus.Entry) func(*Workflow) {
	return func(w *Workflow) { w.log = log }
}

func New(api API, sessions session.Store, options ...func(*Workflow)) *Workflow {
	w := &Workflow{
		api:      api,
		resolver: NewResolver(api),
		sessions: sessions,
		stateTTL: session.DefaultTTL,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}

	for _, fn := range options {
		fn(w)
	}

	return w
}

func (w *Workflow) Resolver() *Resolver { return w.resolver }

// CreateRequest describes a record to add. Add never resolves existing
// names: duplicate names with different content are valid DNS.
type CreateRequest struct {
	Name     string
	Type     cloudflare.RecordType
	Content  string
	TTL      int
	Proxied  bool
	Priority *int
}

// Create adds a new record. Validation failures surface before any
// provider call, as errors from the client.
func (w *Workflow) Create(ctx context.Context, zoneID string, req CreateRequest) (Result, error) {
	record, err := w.api.CreateRecord(ctx, zoneID, cloudflare.CreateRecordParams{
		Name:     req.Name,
		Type:     req.Type,
		Content:  req.Content,
		TTL:      req.TTL,
		Proxied:  req.Proxied,
		Priority: req.Priority,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeCreated, Record: record}, nil
}

// UpdateRequest names a target record and the fields to change. Nil
// fields keep the record's current values.
type UpdateRequest struct {
	Name    string
	Content string
	TTL     *int
	Proxied *bool
}

// Update resolves the name and applies the change when it matches
// exactly one record. Several matches park the new values as a pending
// mutation and hand the candidate set back for disambiguation.
func (w *Workflow) Update(ctx context.Context, conv, zoneID string, req UpdateRequest) (Result, error) {
	matches, err := w.resolver.Resolve(ctx, zoneID, req.Name, "")
	if err != nil {
		return Result{}, err
	}

	switch {
	case len(matches) == 0:
		return Result{Outcome: OutcomeNotFound}, nil

	case len(matches) > 1:
		state := session.State{
			Flow: FlowUpdate,
			Step: StepDisambiguation,
			Pending: &session.PendingMutation{
				Content: req.Content,
				TTL:     req.TTL,
				Proxied: req.Proxied,
			},
		}
		if err := w.sessions.Set(ctx, conv, state, w.stateTTL); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeNeedsDisambiguation, Matches: matches}, nil
	}

	record, err := w.applyUpdate(ctx, zoneID, matches[0].ID, req.Content, req.TTL, req.Proxied)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeUpdated, Record: record}, nil
}

// CompleteUpdate applies a parked update to the record the user picked.
// The applied values are exactly the ones captured when the original
// command ran.
func (w *Workflow) CompleteUpdate(ctx context.Context, conv, zoneID, recordID string) (Result, error) {
	state, ok, err := w.sessions.Get(ctx, conv)
	if err != nil {
		return Result{}, err
	}
	if !ok || state.Flow != FlowUpdate || state.Pending == nil {
		return Result{Outcome: OutcomeRejected, Message: "No pending update. Start over with /update."}, nil
	}

	if err := w.sessions.Clear(ctx, conv); err != nil {
		return Result{}, err
	}

	record, err := w.applyUpdate(ctx, zoneID, recordID, state.Pending.Content, state.Pending.TTL, state.Pending.Proxied)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeUpdated, Record: record}, nil
}

func (w *Workflow) applyUpdate(ctx context.Context, zoneID, recordID, content string, ttl *int, proxied *bool) (cloudflare.Record, error) {
	params := cloudflare.UpdateRecordParams{TTL: ttl, Proxied: proxied}
	if content != "" {
		params.Content = &content
	}
	return w.api.UpdateRecord(ctx, zoneID, recordID, params)
}

// Delete resolves the name and stages a confirmation. Even a single
// match is never deleted directly: deletion is irreversible, so the
// user confirms first. An optional type narrows the candidates.
func (w *Workflow) Delete(ctx context.Context, conv, zoneID, name string, rtype cloudflare.RecordType) (Result, error) {
	matches, err := w.resolver.Resolve(ctx, zoneID, name, rtype)
	if err != nil {
		return Result{}, err
	}

	switch {
	case len(matches) == 0:
		return Result{Outcome: OutcomeNotFound}, nil

	case len(matches) > 1:
		state := session.State{Flow: FlowDelete, Step: StepDisambiguation}
		if err := w.sessions.Set(ctx, conv, state, w.stateTTL); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeNeedsDisambiguation, Matches: matches}, nil
	}

	return w.stageDelete(ctx, conv, matches[0])
}

// RequestDelete stages deletion of a specific record, typically after
// the user picked it from an ambiguous candidate set.
func (w *Workflow) RequestDelete(ctx context.Context, conv, zoneID, recordID string) (Result, error) {
	record, err := w.api.GetRecord(ctx, zoneID, recordID)
	if err != nil {
		return Result{}, err
	}
	return w.stageDelete(ctx, conv, record)
}

func (w *Workflow) stageDelete(ctx context.Context, conv string, record cloudflare.Record) (Result, error) {
	state := session.State{Flow: FlowDelete, Step: StepConfirmDelete}.WithData(dataRecordID, record.ID)
	if err := w.sessions.Set(ctx, conv, state, w.stateTTL); err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeNeedsConfirmation, Record: record}, nil
}

// ConfirmDelete performs the staged deletion. The record is fetched
// once more so the caller can show what was removed.
func (w *Workflow) ConfirmDelete(ctx context.Context, conv, zoneID, recordID string) (Result, error) {
	record, err := w.api.GetRecord(ctx, zoneID, recordID)
	if err != nil {
		return Result{}, err
	}

	if err := w.api.DeleteRecord(ctx, zoneID, recordID); err != nil {
		return Result{}, err
	}

	if err := w.sessions.Clear(ctx, conv); err != nil {
		w.log.WithError(err).WithField("conversation", conv).Warn("clearing session after delete")
	}
	return Result{Outcome: OutcomeDeleted, Record: record}, nil
}

// ToggleProxy flips the proxy flag on the record matching name.
// Non-proxyable candidates are dropped from an ambiguous set; when the
// only match cannot be proxied, the operation is rejected outright.
func (w *Workflow) ToggleProxy(ctx context.Context, conv, zoneID, name string) (Result, error) {
	matches, err := w.resolver.Resolve(ctx, zoneID, name, "")
	if err != nil {
		return Result{}, err
	}
	if len(matches) == 0 {
		return Result{Outcome: OutcomeNotFound}, nil
	}

	var proxyable []cloudflare.Record
	for _, record := range matches {
		if record.Type.Proxyable() {
			proxyable = append(proxyable, record)
		}
	}

	switch {
	case len(proxyable) == 0:
		if len(matches) == 1 {
			return Result{
				Outcome: OutcomeRejected,
				Record:  matches[0],
				Message: fmt.Sprintf("Cannot proxy %s records", matches[0].Type),
			}, nil
		}
		return Result{
			Outcome: OutcomeRejected,
			Message: "No proxyable records match (only A, AAAA, and CNAME records can be proxied)",
		}, nil

	case len(proxyable) > 1:
		state := session.State{Flow: FlowToggle, Step: StepDisambiguation}
		if err := w.sessions.Set(ctx, conv, state, w.stateTTL); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeNeedsDisambiguation, Matches: proxyable}, nil
	}

	record, err := w.api.ToggleProxy(ctx, zoneID, proxyable[0].ID)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeToggled, Record: record}, nil
}

// CompleteToggle toggles the record the user picked.
func (w *Workflow) CompleteToggle(ctx context.Context, conv, zoneID, recordID string) (Result, error) {
	record, err := w.api.ToggleProxy(ctx, zoneID, recordID)
	if err != nil {
		return Result{}, err
	}

	if err := w.sessions.Clear(ctx, conv); err != nil {
		w.log.WithError(err).WithField("conversation", conv).Warn("clearing session after toggle")
	}
	return Result{Outcome: OutcomeToggled, Record: record}, nil
}

// Cancel drops any in-progress flow for the conversation. It reports
// whether there was one; an in-flight provider call is not aborted.
func (w *Workflow) Cancel(ctx context.Context, conv string) (bool, error) {
	_, ok, err := w.sessions.Get(ctx, conv)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return true, w.sessions.Clear(ctx, conv)
}
