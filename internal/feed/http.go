package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"locationapp-backend/internal/domain"
)

// apiError mirrors the JSON error body of the HTTP API.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// HTTPFetcher reads the public listing from the HTTP API.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPFetcher{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, filter domain.ListingFilter, cursor string) (*Page, error) {
	q := url.Values{}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	if filter.BudgetMax != nil {
		q.Set("budgetMax", strconv.FormatInt(*filter.BudgetMax, 10))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/v1/rooms?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body apiError
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, decodeError(resp.StatusCode, body)
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode listing page: %w", err)
	}
	return &page, nil
}

// decodeError maps an API error body back onto the domain error categories.
func decodeError(status int, body apiError) error {
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch body.Code {
	case "validation_error":
		return domain.NewValidationError(body.Field, msg)
	case "missing_index":
		return &domain.MissingIndexError{Hint: body.Hint}
	case "invalid_cursor":
		return fmt.Errorf("%w: %s", domain.ErrInvalidCursor, msg)
	case "not_found":
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case "unavailable":
		return fmt.Errorf("%w: %s", domain.ErrUnavailable, msg)
	}
	if status >= 500 {
		return fmt.Errorf("%w: status %d: %s", domain.ErrUnavailable, status, msg)
	}
	return fmt.Errorf("listing request failed: status %d: %s", status, msg)
}
