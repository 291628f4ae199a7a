// Package apiclient fetches account, transaction, budget and goal snapshots
// from the finance REST API.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/source"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 15 * time.Second
	maxBodySize    = 8 << 20 // 8 MiB
	pageLimit      = 100
	maxPages       = 1000
)

var (
	// ErrUnauthorized indicates the API token is missing, expired or invalid.
	ErrUnauthorized = errors.New("apiclient: unauthorized (token expired or invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("apiclient: rate limited")
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client fetches snapshot collections from the finance API.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client for the given options.
// Returns nil if no base URL is configured.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil
	}
	if !strings.HasSuffix(base, apiPrefix) {
		base += apiPrefix
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(opts.Token),
		timeout: timeout,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

// FetchSnapshot fetches all four collections concurrently. On failure the
// collections that did arrive are returned along with the first error.
func (c *Client) FetchSnapshot(ctx context.Context) (*FetchResult, error) {
	var (
		res     = &FetchResult{}
		skipped atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, n, err := c.FetchAccounts(gctx)
		res.Snapshot.Accounts = accounts
		skipped.Add(int64(n))
		return err
	})
	g.Go(func() error {
		txs, n, err := c.FetchTransactions(gctx)
		res.Snapshot.Transactions = txs
		skipped.Add(int64(n))
		return err
	})
	g.Go(func() error {
		budgets, n, err := c.FetchBudgets(gctx)
		res.Snapshot.Budgets = budgets
		skipped.Add(int64(n))
		return err
	})
	g.Go(func() error {
		goals, n, err := c.FetchGoals(gctx)
		res.Snapshot.Goals = goals
		skipped.Add(int64(n))
		return err
	})

	err := g.Wait()
	res.Snapshot.FetchedAt = time.Now()
	res.Skipped = int(skipped.Load())
	return res, err
}

// FetchAccounts returns every account. The second value counts skipped records.
func (c *Client) FetchAccounts(ctx context.Context) ([]model.Account, int, error) {
	var raw []source.RawAccount
	if err := c.getJSON(ctx, "/accounts/", nil, &raw); err != nil {
		return nil, 0, err
	}
	var out []model.Account
	skipped := 0
	for _, r := range raw {
		a, err := r.Model()
		if err != nil {
			skipped++
			continue
		}
		out = append(out, a)
	}
	return out, skipped, nil
}

// FetchBudgets returns every budget. The second value counts skipped records.
func (c *Client) FetchBudgets(ctx context.Context) ([]model.Budget, int, error) {
	var raw []source.RawBudget
	if err := c.getJSON(ctx, "/budgets/", nil, &raw); err != nil {
		return nil, 0, err
	}
	var out []model.Budget
	skipped := 0
	for _, r := range raw {
		b, err := r.Model()
		if err != nil {
			skipped++
			continue
		}
		out = append(out, b)
	}
	return out, skipped, nil
}

// FetchGoals returns every goal. The second value counts skipped records.
func (c *Client) FetchGoals(ctx context.Context) ([]model.Goal, int, error) {
	var raw []source.RawGoal
	if err := c.getJSON(ctx, "/goals/", nil, &raw); err != nil {
		return nil, 0, err
	}
	var out []model.Goal
	skipped := 0
	for _, r := range raw {
		g, err := r.Model()
		if err != nil {
			skipped++
			continue
		}
		out = append(out, g)
	}
	return out, skipped, nil
}

// FetchTransactions walks every page of the transaction listing.
func (c *Client) FetchTransactions(ctx context.Context) ([]model.Transaction, int, error) {
	var out []model.Transaction
	skipped := 0

	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(pageLimit))

		var p transactionPage
		if err := c.getJSON(ctx, "/transactions/", q, &p); err != nil {
			return out, skipped, err
		}
		for _, item := range p.Data {
			var r source.RawTransaction
			if err := json.Unmarshal(item, &r); err != nil {
				skipped++
				continue
			}
			t, err := r.Model()
			if err != nil {
				skipped++
				continue
			}
			out = append(out, t)
		}
		if page >= p.TotalPages || len(p.Data) == 0 {
			break
		}
	}
	return out, skipped, nil
}

// getJSON performs a rate-limited authenticated GET and decodes the body into dst.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("apiclient: parsing %s: %w", path, err)
	}
	return nil
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("apiclient: waiting for rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fburn/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("apiclient: %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("apiclient: reading response: %w", err)
	}
	return body, nil
}
