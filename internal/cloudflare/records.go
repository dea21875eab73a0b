package cloudflare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxPerPage is the largest page size the dns_records endpoint accepts.
const maxPerPage = 100

const defaultMXPriority = 10

// ListRecordsParams narrows a single-page record listing.
type ListRecordsParams struct {
	Type    RecordType // optional; validated when set
	Name    string     // optional; provider-side exact name filter
	Page    int        // 1-based; 0 means first page
	PerPage int        // 0 means maxPerPage
}

// ListRecords fetches one page of records. Callers wanting the whole
// zone use ListAllRecords.
func (c *Client) ListRecords(ctx context.Context, zoneID string, params ListRecordsParams) ([]Record, error) {
	zid, err := c.resolveZone(zoneID)
	if err != nil {
		return nil, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > maxPerPage {
		params.PerPage = maxPerPage
	}

	query := url.Values{
		"page":     {strconv.Itoa(params.Page)},
		"per_page": {strconv.Itoa(params.PerPage)},
	}
	if params.Type != "" {
		rtype := RecordType(strings.ToUpper(string(params.Type)))
		if !rtype.Valid() {
			return nil, validationError("Invalid record type: %s", params.Type)
		}
		query.Set("type", string(rtype))
	}
	if params.Name != "" {
		query.Set("name", params.Name)
	}

	result, err := c.do(ctx, http.MethodGet, "/zones/"+zid+"/dns_records", query, nil)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, &APIError{Kind: KindBadResponse, Message: "Invalid response from Cloudflare API"}
	}
	return records, nil
}

// ListAllRecords pages through the full zone listing. A short page ends
// the walk.
func (c *Client) ListAllRecords(ctx context.Context, zoneID string, rtype RecordType) ([]Record, error) {
	zid, err := c.resolveZone(zoneID)
	if err != nil {
		return nil, err
	}

	var all []Record
	for page := 1; ; page++ {
		records, err := c.ListRecords(ctx, zid, ListRecordsParams{Type: rtype, Page: page, PerPage: maxPerPage})
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if len(records) < maxPerPage {
			return all, nil
		}
	}
}

// GetRecord fetches a single record by id.
func (c *Client) GetRecord(ctx context.Context, zoneID, recordID string) (Record, error) {
	zid, err := c.resolveZone(zoneID)
	if err != nil {
		return Record{}, err
	}

	result, err := c.do(ctx, http.MethodGet, "/zones/"+zid+"/dns_records/"+recordID, nil, nil)
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := json.Unmarshal(result, &record); err != nil {
		return Record{}, &APIError{Kind: KindBadResponse, Message: "Invalid response from Cloudflare API"}
	}
	return record, nil
}

// FindByName returns every record whose name contains query as a
// case-insensitive substring, in listing order. The API has no
// substring search, so this walks the full listing and filters locally.
func (c *Client) FindByName(ctx context.Context, zoneID, query string, rtype RecordType) ([]Record, error) {
	records, err := c.ListAllRecords(ctx, zoneID, rtype)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []Record
	for _, record := range records {
		if strings.Contains(strings.ToLower(record.Name), needle) {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

// CreateRecordParams describes a record to create. A zero TTL means
// TTLAuto. Priority applies to MX records only and defaults to 10.
type CreateRecordParams struct {
	Name     string
	Type     RecordType
	Content  string
	TTL      int
	Proxied  bool
	Priority *int
}

// CreateRecord validates and creates a new record. The proxied field is
// sent only for proxyable types; priority is sent only for MX.
func (c *Client) CreateRecord(ctx context.Context, zoneID string, params CreateRecordParams) (Record, error) {
	zid, err := c.resolveZone(zoneID)
	if err != nil {
		return Record{}, err
	}

	rtype := RecordType(strings.ToUpper(string(params.Type)))
	if !rtype.Valid() {
		return Record{}, validationError("Invalid record type: %s", params.Type)
	}

	ttl := params.TTL
	if ttl == 0 {
		ttl = TTLAuto
	}

	payload := map[string]any{
		"type":    rtype,
		"name":    params.Name,
		"content": params.Content,
		"ttl":     ttl,
	}
	if rtype.Proxyable() {
		payload["proxied"] = params.Proxied
	}
	if rtype == RecordTypeMX {
		priority := defaultMXPriority
		if params.Priority != nil {
			priority = *params.Priority
		}
		payload["priority"] = priority
	}

	result, err := c.do(ctx, http.MethodPost, "/zones/"+zid+"/dns_records", nil, payload)
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := json.Unmarshal(result, &record); err != nil {
		return Record{}, &APIError{Kind: KindBadResponse, Message: "Invalid response from Cloudflare API"}
	}

	c.log.WithFields(map[string]any{
		"zone": zid, "name": record.Name, "type": record.Type,
	}).Info("created dns record")
	return record, nil
}

// UpdateRecordParams carries the fields to change; nil fields keep the
// existing value.
type UpdateRecordParams struct {
	Name     *string
	Type     *RecordType
	Content  *string
	TTL      *int
	Proxied  *bool
	Priority *int
}

// UpdateRecord overlays the given fields on the current record and
// resubmits the full representation. The PUT endpoint has no partial
// patch semantics, so the read must happen first; a concurrent external
// change between read and write is overwritten.
func (c *Client) UpdateRecord(ctx context.Context, zoneID, recordID string, params UpdateRecordParams) (Record, error) {
	zid, err := c.resolveZone(zoneID)
	if err != nil {
		return Record{}, err
	}

	existing, err := c.GetRecord(ctx, zid, recordID)
	if err != nil {
		return Record{}, err
	}

	rtype := existing.Type
	if params.Type != nil {
		rtype = RecordType(strings.ToUpper(string(*params.Type)))
		if !rtype.Valid() {
			return Record{}, validationError("Invalid record type: %s", *params.Type)
		}
	}

	name := existing.Name
	if params.Name != nil {
		name = *params.Name
	}
	content := existing.Content
	if params.Content != nil {
		content = *params.Content
	}
	ttl := existing.TTL
	if ttl == 0 {
		ttl = TTLAuto
	}
	if params.TTL != nil {
		ttl = *params.TTL
	}

	payload := map[string]any{
		"type":    rtype,
		"name":    name,
		"content": content,
		"ttl":     ttl,
	}
	if rtype.Proxyable() {
		proxied := existing.Proxied
		if params.Proxied != nil {
			proxied = *params.Proxied
		}
		payload["proxied"] = proxied
	}
	if rtype == RecordTypeMX {
		priority := existing.Priority
		if priority == 0 {
			priority = defaultMXPriority
		}
		if params.Priority != nil {
			priority = *params.Priority
		}
		payload["priority"] = priority
	}

	result, err := c.do(ctx, http.MethodPut, "/zones/"+zid+"/dns_records/"+recordID, nil, payload)
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := json.Unmarshal(result, &record); err != nil {
		return Record{}, &APIError{Kind: KindBadResponse, Message: "Invalid response from Cloudflare API"}
	}

	c.log.WithFields(map[string]any{
		"zone": zid, "name": record.Name, "type": record.Type,
	}).Info("updated dns record")
	return record, nil
}

// DeleteRecord removes a record by id. Deleting an id that is already
// gone fails with the provider's not-found error.
func (c *Client) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	zid, err := c.resolveZone(zoneID)
	if err != nil {
		return err
	}

	if _, err := c.do(ctx, http.MethodDelete, "/zones/"+zid+"/dns_records/"+recordID, nil, nil); err != nil {
		return err
	}

	c.log.WithFields(map[string]any{"zone": zid, "record": recordID}).Info("deleted dns record")
	return nil
}

// ToggleProxy flips the proxied flag on a proxyable record.
func (c *Client) ToggleProxy(ctx context.Context, zoneID, recordID string) (Record, error) {
	zid, err := c.resolveZone(zoneID)
	if err != nil {
		return Record{}, err
	}

	existing, err := c.GetRecord(ctx, zid, recordID)
	if err != nil {
		return Record{}, err
	}

	if !existing.Type.Proxyable() {
		return Record{}, validationError("Cannot proxy %s records", existing.Type)
	}

	proxied := !existing.Proxied
	return c.UpdateRecord(ctx, zid, recordID, UpdateRecordParams{Proxied: &proxied})
}
