package workflow

import (
	"context"

	"github.com/tempusbreve/cloudflare-dns-bot/internal/cloudflare"
)

// API is the slice of the Cloudflare client the workflow needs. Nothing
// in this package talks to the provider any other way.
type API interface {
	GetRecord(ctx context.Context, zoneID, recordID string) (cloudflare.Record, error)
	FindByName(ctx context.Context, zoneID, query string, rtype cloudflare.RecordType) ([]cloudflare.Record, error)
	CreateRecord(ctx context.Context, zoneID string, params cloudflare.CreateRecordParams) (cloudflare.Record, error)
	UpdateRecord(ctx context.Context, zoneID, recordID string, params cloudflare.UpdateRecordParams) (cloudflare.Record, error)
	DeleteRecord(ctx context.Context, zoneID, recordID string) error
	ToggleProxy(ctx context.Context, zoneID, recordID string) (cloudflare.Record, error)
}

// Resolver turns a user-typed, possibly ambiguous record name into the
// concrete records it matches. Matching is substring, case-insensitive,
// unanchored, over the name only; order follows the provider listing.
type Resolver struct {
	api API
}

func NewResolver(api API) *Resolver {
	return &Resolver{api: api}
}

// Resolve returns the records matching query, optionally narrowed to
// one type. No fuzzy matching; zero matches is a normal outcome.
func (r *Resolver) Resolve(ctx context.Context, zoneID, query string, rtype cloudflare.RecordType) ([]cloudflare.Record, error) {
	matches, err := r.api.FindByName(ctx, zoneID, query, "")
	if err != nil {
		return nil, err
	}

	if rtype == "" {
		return matches, nil
	}

	var filtered []cloudflare.Record
	for _, record := range matches {
		if record.Type == rtype {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}
