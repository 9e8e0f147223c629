// Package backend talks to the agency REST API.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/AlexTLDR/agencydesk/internal/database"
)

type Config struct {
	BaseURL string
	// Token is sent as a bearer token when set
	Token   string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: src, Base: http.DefaultTransport},
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// SearchCustomers calls GET /customers with filter_name, page and per_page
func (c *Client) SearchCustomers(ctx context.Context, filters database.CustomerFilters) (*database.CustomerPage, error) {
	q := url.Values{}
	q.Set("filter_name", filters.Name)
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filters.PerPage))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/customers?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build customer search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var page database.CustomerPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode customer search response: %w", err)
	}
	if page.Data == nil {
		page.Data = []database.Customer{}
	}
	return &page, nil
}
