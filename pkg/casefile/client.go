// Package casefile is the HTTP client for the case-management backend.
//
// The backend exposes each investigation case's network ("money flow") as a
// single JSON document of nodes and edges. This package fetches that document,
// translates the wire representation into the [graph] model, and normalizes
// it, so the rest of the system never sees backend field names or integer
// identifiers.
package casefile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/casegraph/casegraph/pkg/errors"
	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/httputil"
)

const httpTimeout = 10 * time.Second

// Config configures the backend connection.
type Config struct {
	// BaseURL is the backend API root, e.g. https://backend.example/api/v1.
	BaseURL string

	// Token is the bearer token for authenticated requests. Empty sends no
	// Authorization header.
	Token string
}

// Client talks to the case-management backend.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a backend client. The base URL's trailing slash is
// stripped so paths join predictably.
func NewClient(cfg Config) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
	}
}

// Case is a brief case descriptor from the backend's case list.
type Case struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// FetchNetwork retrieves the complete network for a case and converts it to
// the graph model. The result is normalized; backend responses with unknown
// types or malformed records degrade rather than fail.
func (c *Client) FetchNetwork(ctx context.Context, caseID string) (graph.Network, error) {
	if err := errors.ValidateCaseID(caseID); err != nil {
		return graph.Network{}, err
	}

	var resp moneyFlowResponse
	url := fmt.Sprintf("%s/cases/%s/money-flow", c.baseURL, caseID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return graph.Network{}, errors.New(errors.ErrCodeCaseNotFound, "case %s not found", caseID)
		}
		return graph.Network{}, errors.Wrap(errors.ErrCodeNetwork, err, "fetch network for case %s", caseID)
	}

	n := resp.toNetwork(caseID)
	n.Normalize()
	return n, nil
}

// ListCases retrieves the backend's case list, following pagination until all
// pages are consumed.
func (c *Client) ListCases(ctx context.Context) ([]Case, error) {
	var cases []Case
	for page := 1; ; page++ {
		var resp caseListResponse
		url := fmt.Sprintf("%s/cases?page=%d&page_size=100", c.baseURL, page)
		if err := c.getJSON(ctx, url, &resp); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list cases (page %d)", page)
		}
		for _, item := range resp.Items {
			cases = append(cases, Case{
				ID:       strconv.Itoa(item.ID),
				Number:   item.CaseNumber,
				Title:    item.Title,
				Status:   item.Status,
				Priority: item.Priority,
			})
		}
		if page >= resp.Pages || len(resp.Items) == 0 {
			return cases, nil
		}
	}
}

// getJSON performs an authenticated GET and decodes the response, retrying
// transient failures with backoff.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		body, err := c.doRequest(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request failed"))
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "resource not found")
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "authentication required")
	case resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "access denied")
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &errors.RateLimitedError{RetryAfter: retryAfter}
	case resp.StatusCode >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "backend error: status %d", resp.StatusCode))
	default:
		return errors.New(errors.ErrCodeNetwork, "unexpected status %d", resp.StatusCode)
	}
}
