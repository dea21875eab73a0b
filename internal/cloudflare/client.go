package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

const (
	requestTimeout = 30 * time.Second
	connectTimeout = 10 * time.Second
)

// Client is the only path to the Cloudflare API. It owns the auth
// header, the base endpoint, and the default zone selection. No call is
// retried; a failure surfaces to the caller as an *APIError.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logrus.Entry

	mu            sync.Mutex
	defaultZoneID string
}

func WithToken(token string) func(*Client) {
	return func(c *Client) { c.token = token }
}

func WithBaseURL(baseURL string) func(*Client) {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithDefaultZone(zoneID string) func(*Client) {
	return func(c *Client) { c.defaultZoneID = zoneID }
}

func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log *logrus.Entry) func(*Client) {
	return func(c *Client) { c.log = log }
}

func NewClient(options ...func(*Client)) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
		log: logrus.NewEntry(logrus.StandardLogger()),
	}

	for _, fn := range options {
		fn(c)
	}

	return c
}

// SetDefaultZone switches the active zone for subsequent calls that do
// not pass a zone explicitly.
func (c *Client) SetDefaultZone(zoneID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultZoneID = zoneID
}

// DefaultZone returns the currently active zone id, if any.
func (c *Client) DefaultZone() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.defaultZoneID
}

// resolveZone picks the explicit zone when given, otherwise the active
// default. Callers resolve once per request; nothing else reads the
// shared field mid-flight.
func (c *Client) resolveZone(zoneID string) (string, error) {
	if zoneID != "" {
		return zoneID, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.defaultZoneID == "" {
		return "", validationError("no zone ID provided and no default zone configured")
	}
	return c.defaultZoneID, nil
}

// do funnels every API call: builds the request, classifies transport
// failures, decodes the envelope, and converts success=false into a
// rejected *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, validationError("encoding request body: %v", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, validationError("building request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.WithError(err).WithField("path", path).Error("cloudflare request timed out")
			return nil, &APIError{Kind: KindTimeout, Message: "Request timed out. Please try again."}
		}
		c.log.WithError(err).WithField("path", path).Error("cloudflare request failed")
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("Network error: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Error("reading cloudflare response")
		return nil, &APIError{Kind: KindNetwork, Message: fmt.Sprintf("Network error: %v", err), StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.WithError(err).WithField("path", path).Error("malformed cloudflare response")
		return nil, &APIError{Kind: KindBadResponse, Message: "Invalid response from Cloudflare API", StatusCode: resp.StatusCode}
	}

	if !env.Success {
		apiErr := rejectedError(resp.StatusCode, env.Errors)
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Errorf("cloudflare rejected request: %s", apiErr.Message)
		return nil, apiErr
	}

	return env.Result, nil
}

func isTimeout(err error) bool {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return true
	}
	if ue, ok := err.(*url.Error); ok && ue.Timeout() {
		return true
	}
	return ctxDeadline(err)
}

func ctxDeadline(err error) bool {
	for err != nil {
		if err == context.DeadlineExceeded {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// GetZone fetches metadata for the given zone, or the active zone when
// zoneID is empty.
func (c *Client) GetZone(ctx context.Context, zoneID string) (Zone, error) {
	zid, err := c.resolveZone(zoneID)
	if err != nil {
		return Zone{}, err
	}

	result, err := c.do(ctx, http.MethodGet, "/zones/"+zid, nil, nil)
	if err != nil {
		return Zone{}, err
	}

	var zone Zone
	if err := json.Unmarshal(result, &zone); err != nil {
		return Zone{}, &APIError{Kind: KindBadResponse, Message: "Invalid response from Cloudflare API"}
	}
	return zone, nil
}

// ListZones enumerates the zones the token can see.
func (c *Client) ListZones(ctx context.Context) ([]Zone, error) {
	query := url.Values{"per_page": {"50"}}
	result, err := c.do(ctx, http.MethodGet, "/zones", query, nil)
	if err != nil {
		return nil, err
	}

	var zones []Zone
	if err := json.Unmarshal(result, &zones); err != nil {
		return nil, &APIError{Kind: KindBadResponse, Message: "Invalid response from Cloudflare API"}
	}
	return zones, nil
}

// ZoneByName finds a zone by exact, case-insensitive domain name.
func (c *Client) ZoneByName(ctx context.Context, name string) (Zone, error) {
	zones, err := c.ListZones(ctx)
	if err != nil {
		return Zone{}, err
	}

	for _, zone := range zones {
		if strings.EqualFold(zone.Name, name) {
			return zone, nil
		}
	}
	return Zone{}, &APIError{
		Kind:       KindRejected,
		Message:    fmt.Sprintf("Zone not found: %s", name),
		StatusCode: http.StatusNotFound,
	}
}
