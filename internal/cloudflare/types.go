package cloudflare

import (
	"encoding/json"
	"time"
)

// TTLAuto is the sentinel TTL value meaning "let Cloudflare choose".
const TTLAuto = 1

type RecordType string

func (t RecordType) String() string { return string(t) }

const (
	RecordTypeA     = RecordType("A")
	RecordTypeAAAA  = RecordType("AAAA")
	RecordTypeCNAME = RecordType("CNAME")
	RecordTypeTXT   = RecordType("TXT")
	RecordTypeMX    = RecordType("MX")
	RecordTypeNS    = RecordType("NS")
	RecordTypeSRV   = RecordType("SRV")
	RecordTypeCAA   = RecordType("CAA")
	RecordTypePTR   = RecordType("PTR")
)

var validRecordTypes = map[RecordType]bool{
	RecordTypeA:     true,
	RecordTypeAAAA:  true,
	RecordTypeCNAME: true,
	RecordTypeTXT:   true,
	RecordTypeMX:    true,
	RecordTypeNS:    true,
	RecordTypeSRV:   true,
	RecordTypeCAA:   true,
	RecordTypePTR:   true,
}

func (t RecordType) Valid() bool { return validRecordTypes[t] }

// Proxyable reports whether records of this type can be routed through
// the Cloudflare edge.
func (t RecordType) Proxyable() bool {
	return t == RecordTypeA || t == RecordTypeAAAA || t == RecordTypeCNAME
}

// RecordTypeNames lists the accepted record types in sorted order, for
// user-facing validation messages.
func RecordTypeNames() []string {
	return []string{"A", "AAAA", "CAA", "CNAME", "MX", "NS", "PTR", "SRV", "TXT"}
}

// Record is one DNS record as Cloudflare represents it on the wire.
type Record struct {
	ID         string     `json:"id"`
	ZoneID     string     `json:"zone_id,omitempty"`
	Name       string     `json:"name"`
	Type       RecordType `json:"type"`
	Content    string     `json:"content"`
	TTL        int        `json:"ttl"`
	Proxied    bool       `json:"proxied"`
	Priority   int        `json:"priority,omitempty"`
	CreatedOn  time.Time  `json:"created_on"`
	ModifiedOn time.Time  `json:"modified_on"`
}

// Zone is Cloudflare's container for one domain's records.
type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// envelope is the v4 API response wrapper. Every endpoint returns it;
// success=false means the call failed regardless of HTTP status.
type envelope struct {
	Success bool            `json:"success"`
	Errors  []ResponseError `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

// ResponseError is a single entry from the envelope's errors list.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
