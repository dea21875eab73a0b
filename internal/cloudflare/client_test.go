package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(
		WithToken("test-token"),
		WithBaseURL(server.URL),
		WithDefaultZone("zone123"),
		WithLogger(quietLogger()),
	)
	return client, server
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"errors":  []any{},
		"result":  result,
	})
}

func decodePayload(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding request payload: %v", err)
	}
	return payload
}

func TestCreateRecord_Defaults(t *testing.T) {
	var payload map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/zones/zone123/dns_records" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		payload = decodePayload(t, r)
		writeResult(w, Record{ID: "rec1", Name: "sub", Type: RecordTypeA, Content: "1.2.3.4", TTL: TTLAuto})
	}))

	record, err := client.CreateRecord(context.Background(), "", CreateRecordParams{
		Name: "sub", Type: "A", Content: "1.2.3.4",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if record.ID != "rec1" {
		t.Errorf("expected record rec1, got %q", record.ID)
	}

	if payload["type"] != "A" || payload["name"] != "sub" || payload["content"] != "1.2.3.4" {
		t.Errorf("unexpected payload %v", payload)
	}
	if payload["ttl"] != float64(TTLAuto) {
		t.Errorf("expected ttl %d, got %v", TTLAuto, payload["ttl"])
	}
	if payload["proxied"] != false {
		t.Errorf("expected proxied false, got %v", payload["proxied"])
	}
	if _, ok := payload["priority"]; ok {
		t.Error("priority should not be sent for A records")
	}
}

func TestCreateRecord_NoProxiedForNonProxyable(t *testing.T) {
	for _, rtype := range []RecordType{RecordTypeTXT, RecordTypeMX, RecordTypeNS, RecordTypeSRV, RecordTypeCAA, RecordTypePTR} {
		t.Run(string(rtype), func(t *testing.T) {
			var payload map[string]any
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				payload = decodePayload(t, r)
				writeResult(w, Record{ID: "rec1", Type: rtype})
			}))

			_, err := client.CreateRecord(context.Background(), "", CreateRecordParams{
				Name: "sub", Type: rtype, Content: "payload", Proxied: true,
			})
			if err != nil {
				t.Fatalf("CreateRecord: %v", err)
			}
			if _, ok := payload["proxied"]; ok {
				t.Errorf("proxied should not be sent for %s records", rtype)
			}
		})
	}
}

func TestCreateRecord_MXPriorityDefault(t *testing.T) {
	var payload map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload = decodePayload(t, r)
		writeResult(w, Record{ID: "rec1", Type: RecordTypeMX})
	}))

	_, err := client.CreateRecord(context.Background(), "", CreateRecordParams{
		Name: "mail", Type: "mx", Content: "mail.example.com",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if payload["priority"] != float64(10) {
		t.Errorf("expected default priority 10, got %v", payload["priority"])
	}
	if payload["type"] != "MX" {
		t.Errorf("expected type normalized to MX, got %v", payload["type"])
	}
}

func TestCreateRecord_InvalidTypeNoRequest(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	_, err := client.CreateRecord(context.Background(), "", CreateRecordParams{
		Name: "sub", Type: "BOGUS", Content: "x",
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected zero requests, got %d", calls)
	}
}

func TestUpdateRecord_MergesExisting(t *testing.T) {
	existing := Record{
		ID: "rec1", Name: "sub", Type: RecordTypeCNAME,
		Content: "old", TTL: 3600, Proxied: true,
	}
	var payload map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeResult(w, existing)
		case http.MethodPut:
			payload = decodePayload(t, r)
			updated := existing
			updated.Content = payload["content"].(string)
			writeResult(w, updated)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))

	content := "5.6.7.8"
	record, err := client.UpdateRecord(context.Background(), "", "rec1", UpdateRecordParams{Content: &content})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if record.Content != "5.6.7.8" {
		t.Errorf("expected updated content, got %q", record.Content)
	}

	want := map[string]any{
		"type": "CNAME", "name": "sub", "content": "5.6.7.8",
		"ttl": float64(3600), "proxied": true,
	}
	for key, value := range want {
		if payload[key] != value {
			t.Errorf("payload[%s] = %v, want %v", key, payload[key], value)
		}
	}
	if _, ok := payload["priority"]; ok {
		t.Error("priority should not be sent for CNAME records")
	}
}

func TestUpdateRecord_MXKeepsPriority(t *testing.T) {
	existing := Record{ID: "rec1", Name: "mail", Type: RecordTypeMX, Content: "old.example.com", TTL: 300, Priority: 20}
	var payload map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeResult(w, existing)
			return
		}
		payload = decodePayload(t, r)
		writeResult(w, existing)
	}))

	content := "new.example.com"
	if _, err := client.UpdateRecord(context.Background(), "", "rec1", UpdateRecordParams{Content: &content}); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if payload["priority"] != float64(20) {
		t.Errorf("expected priority carried over as 20, got %v", payload["priority"])
	}
	if _, ok := payload["proxied"]; ok {
		t.Error("proxied should not be sent for MX records")
	}
}

func TestFindByName_CaseInsensitiveSubstring(t *testing.T) {
	records := []Record{
		{ID: "1", Name: "sub.example.com", Type: RecordTypeA},
		{ID: "2", Name: "other.example.com", Type: RecordTypeA},
		{ID: "3", Name: "SUB2.example.com", Type: RecordTypeCNAME},
	}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, records)
	}))

	matches, err := client.FindByName(context.Background(), "", "SuB", "")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "1" || matches[1].ID != "3" {
		t.Errorf("matches out of listing order: %v", matches)
	}
}

func TestListAllRecords_Paginates(t *testing.T) {
	var pages []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		count := maxPerPage
		if page == "2" {
			count = 40
		}
		records := make([]Record, count)
		for i := range records {
			records[i] = Record{ID: fmt.Sprintf("p%s-%d", page, i), Name: "a.example.com"}
		}
		writeResult(w, records)
	}))

	records, err := client.ListAllRecords(context.Background(), "", "")
	if err != nil {
		t.Fatalf("ListAllRecords: %v", err)
	}
	if len(records) != maxPerPage+40 {
		t.Errorf("expected %d records, got %d", maxPerPage+40, len(records))
	}
	if len(pages) != 2 || pages[0] != "1" || pages[1] != "2" {
		t.Errorf("unexpected page sequence %v", pages)
	}
}

func TestToggleProxy_TwiceRestoresOriginal(t *testing.T) {
	record := Record{ID: "rec1", Name: "sub.example.com", Type: RecordTypeA, Content: "1.2.3.4", TTL: TTLAuto, Proxied: true}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			payload := decodePayload(t, r)
			record.Proxied = payload["proxied"].(bool)
		}
		writeResult(w, record)
	}))

	first, err := client.ToggleProxy(context.Background(), "", "rec1")
	if err != nil {
		t.Fatalf("first ToggleProxy: %v", err)
	}
	if first.Proxied {
		t.Error("expected proxied false after first toggle")
	}

	second, err := client.ToggleProxy(context.Background(), "", "rec1")
	if err != nil {
		t.Fatalf("second ToggleProxy: %v", err)
	}
	if !second.Proxied {
		t.Error("expected proxied restored to true after second toggle")
	}
}

func TestToggleProxy_RejectsNonProxyable(t *testing.T) {
	puts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			puts++
		}
		writeResult(w, Record{ID: "rec1", Name: "sub", Type: RecordTypeTXT, Content: "v=spf1"})
	}))

	_, err := client.ToggleProxy(context.Background(), "", "rec1")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Cannot proxy TXT records" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if puts != 0 {
		t.Errorf("expected no write, got %d PUTs", puts)
	}
}

func TestDo_RejectedEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"errors": []map[string]any{
				{"code": 81057, "message": "Record already exists."},
				{"code": 9999, "message": "Something else."},
			},
		})
	}))

	_, err := client.GetRecord(context.Background(), "", "rec1")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Kind != KindRejected {
		t.Errorf("expected KindRejected, got %s", apiErr.Kind)
	}
	if apiErr.Message != "Record already exists.; Something else." {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected status %d", apiErr.StatusCode)
	}
	if len(apiErr.Errors) != 2 {
		t.Errorf("expected raw error list preserved, got %v", apiErr.Errors)
	}
}

func TestDo_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"errors":  []map[string]any{{"code": 81044, "message": "Record not found."}},
		})
	}))

	_, err := client.GetRecord(context.Background(), "", "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDo_MalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))

	_, err := client.GetRecord(context.Background(), "", "rec1")
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Kind != KindBadResponse {
		t.Fatalf("expected bad-response error, got %v", err)
	}
}

func TestDo_Timeout(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeResult(w, Record{})
	}))
	client.httpClient = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := client.GetRecord(context.Background(), "", "rec1")
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Kind != KindTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !IsTransport(err) {
		t.Error("timeout should classify as transport")
	}
}

func TestResolveZone(t *testing.T) {
	client := NewClient(WithToken("test-token"), WithLogger(quietLogger()))

	if _, err := client.resolveZone(""); !IsValidation(err) {
		t.Fatalf("expected validation error without a zone, got %v", err)
	}

	if zid, err := client.resolveZone("explicit"); err != nil || zid != "explicit" {
		t.Fatalf("explicit zone should win, got %q %v", zid, err)
	}

	client.SetDefaultZone("default-zone")
	if zid, err := client.resolveZone(""); err != nil || zid != "default-zone" {
		t.Fatalf("expected default zone, got %q %v", zid, err)
	}
}

func TestZoneByName(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, []Zone{
			{ID: "z1", Name: "example.com", Status: "active"},
			{ID: "z2", Name: "example.org", Status: "active"},
		})
	}))

	zone, err := client.ZoneByName(context.Background(), "Example.ORG")
	if err != nil {
		t.Fatalf("ZoneByName: %v", err)
	}
	if zone.ID != "z2" {
		t.Errorf("expected z2, got %q", zone.ID)
	}

	if _, err := client.ZoneByName(context.Background(), "nope.net"); !IsNotFound(err) {
		t.Errorf("expected not-found for unknown zone, got %v", err)
	}
}
