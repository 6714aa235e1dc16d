package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// PostgREST upserts rows through a Supabase-style REST endpoint.
//
// With merge-duplicates PostgREST always returns the merged row, so an
// unchanged re-write is reported as Accepted. Only ignore-duplicates can
// report a Skipped row (an empty representation).
type PostgREST struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// PostgRESTOptions configures NewPostgREST.
type PostgRESTOptions struct {
	BaseURL string // e.g. https://xyz.supabase.co/rest/v1
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewPostgREST creates a PostgREST sink.
func NewPostgREST(opts PostgRESTOptions) *PostgREST {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &PostgREST{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		logger:     opts.Logger,
	}
}

// postgrestError is PostgREST's error body.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// Write implements Sink.
func (s *PostgREST) Write(ctx context.Context, row provider.Row) (Outcome, error) {
	body, err := json.Marshal(row.Values)
	if err != nil {
		return Failed, fmt.Errorf("encode %s row: %w", row.Table.Name, err)
	}

	u := fmt.Sprintf("%s/%s?on_conflict=%s", s.baseURL, url.PathEscape(row.Table.Name),
		url.QueryEscape(strings.Join(row.Table.Key, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Failed, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution="+row.Table.Policy.String()+",return=representation")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Failed, fmt.Errorf("post %s: %w", row.Table.Name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if emptyRepresentation(respBody) {
			return Skipped, nil
		}
		return Accepted, nil
	}

	werr := &WriteError{Table: row.Table.Name, Key: row.Key(), Status: resp.StatusCode}
	var pe postgrestError
	if json.Unmarshal(respBody, &pe) == nil && (pe.Code != "" || pe.Message != "") {
		werr.Code = pe.Code
		werr.Message = pe.Message
		if pe.Details != "" {
			werr.Message += " (" + pe.Details + ")"
		}
	} else {
		werr.Message = provider.Truncate(respBody, 200)
	}
	if werr.Conflict() {
		s.logger.Debug("row already exists", "table", row.Table.Name, "key", werr.Key)
		return Skipped, nil
	}
	return Failed, werr
}

// emptyRepresentation reports whether a 2xx body is an empty JSON array.
func emptyRepresentation(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return false
	}
	return len(rows) == 0
}

// Close implements Sink.
func (s *PostgREST) Close() {
	s.httpClient.CloseIdleConnections()
}
