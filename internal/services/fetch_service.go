package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/alimgiray/gmash/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Payload is a decoded JSON object. Readers never fail: missing, null or
// mistyped keys come back as zero values.
type Payload map[string]interface{}

// Int reads a numeric field, truncating fractions
func (p Payload) Int(key string) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	}
	return 0
}

func (p Payload) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

func (p Payload) String(key string) string {
	v, _ := p[key].(string)
	return v
}

// Map reads a nested object, returning an empty payload when absent
func (p Payload) Map(key string) Payload {
	if v, ok := p[key].(map[string]interface{}); ok {
		return Payload(v)
	}
	return Payload{}
}

// List reads an array of objects. Entries that are not objects are returned
// as nil so callers can skip them.
func (p Payload) List(key string) []Payload {
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil
	}
	items := make([]Payload, len(raw))
	for i, entry := range raw {
		if obj, ok := entry.(map[string]interface{}); ok {
			items[i] = Payload(obj)
		}
	}
	return items
}

type fetchRequest struct {
	username string
	password string
	useAuth  bool
	headers  map[string]string
}

// FetchOption customizes a single Fetch call
type FetchOption func(*fetchRequest)

// WithBasicAuth sends basic credentials with the request
func WithBasicAuth(username, password string) FetchOption {
	return func(r *fetchRequest) {
		r.username = username
		r.password = password
		r.useAuth = true
	}
}

// WithHeader adds a request header
func WithHeader(key, value string) FetchOption {
	return func(r *fetchRequest) {
		r.headers[key] = value
	}
}

// FetchService performs best-effort JSON GET requests
type FetchService struct {
	client *http.Client
}

func NewFetchService(client *http.Client) *FetchService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FetchService{client: client}
}

// Fetch GETs url and returns the decoded JSON object on HTTP 200. Any other
// status, a transport failure or a body that is not a JSON object yields an
// empty payload.
func (s *FetchService) Fetch(ctx context.Context, url string, opts ...FetchOption) Payload {
	fr := &fetchRequest{headers: map[string]string{}}
	for _, opt := range opts {
		opt(fr)
	}

	entry := logger.WithFields(logrus.Fields{"url": url})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		entry.WithError(err).Debug("Failed to build request")
		return Payload{}
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range fr.headers {
		req.Header.Set(key, value)
	}
	if fr.useAuth {
		req.SetBasicAuth(fr.username, fr.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		entry.WithError(err).Warn("Request failed")
		return Payload{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		entry.WithField("status", resp.StatusCode).Debug("Non-success response")
		return Payload{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		entry.WithError(err).Warn("Failed to read response body")
		return Payload{}
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		entry.WithError(err).Debug("Response body is not a JSON object")
		return Payload{}
	}

	return payload
}
