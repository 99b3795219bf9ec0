package strava

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
	"time"

	"training-os-be/internal/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"github.com/patrickmn/go-cache"
)

const rateLimitCacheKey = "rate_limits"

// TokenSource hands out access tokens; SyncState is the production implementation.
type TokenSource interface {
	Token(ctx context.Context) (string, bool, error)
	ForceRefresh(ctx context.Context, stale string) (string, error)
}

type RetryConfig struct {
	MaxAttempts int
	Initial     time.Duration
	MaxInterval time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	retry      RetryConfig
	limits     *cache.Cache
	logger     logger.ILogger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, retry RetryConfig, log logger.ILogger) *Client {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	if retry.Initial <= 0 {
		retry.Initial = time.Second
	}
	if retry.MaxInterval < retry.Initial {
		retry.MaxInterval = retry.Initial
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		retry:      retry,
		limits:     cache.New(15*time.Minute, 30*time.Minute),
		logger:     log,
	}
}

// RateLimits returns the most recent usage headers seen, if any are still fresh.
func (c *Client) RateLimits() (RateLimits, bool) {
	v, ok := c.limits.Get(rateLimitCacheKey)
	if !ok {
		return RateLimits{}, false
	}
	return v.(RateLimits), true
}

// ListActivities fetches one page of the athlete's activities.
func (c *Client) ListActivities(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	q.PerPage = ClampPerPage(q.PerPage)

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("page", strconv.Itoa(q.Page))
	if q.After != nil {
		params.Set("after", strconv.FormatInt(q.After.Unix(), 10))
	}

	var activities []Activity
	res, err := c.getJSON(ctx, "/athlete/activities", params, &activities)
	if err != nil {
		return nil, err
	}
	return &Page{
		Number:        q.Page,
		PerPage:       q.PerPage,
		Activities:    activities,
		AutoRefreshed: res.autoRefreshed,
		RateLimits:    res.limits,
	}, nil
}

// RecentActivities returns the newest activities, limit clamped to 1..30.
func (c *Client) RecentActivities(ctx context.Context, limit int) (*Page, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxRecentResults {
		limit = MaxRecentResults
	}
	return c.ListActivities(ctx, ListQuery{Page: 1, PerPage: limit})
}

func (c *Client) Activity(ctx context.Context, id int64) (*Activity, error) {
	var activity Activity
	if _, err := c.getJSON(ctx, "/activities/"+strconv.FormatInt(id, 10), nil, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

type response struct {
	status        int
	body          []byte
	limits        RateLimits
	autoRefreshed bool
}

var errRateLimited = errors.New("rate limited")

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) (*response, error) {
	token, refreshed, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.getWithRetry(ctx, path, params, token)
	if err != nil {
		return nil, err
	}

	if res.status == http.StatusUnauthorized {
		c.logger.Warn("STRAVA", "Access token rejected, refreshing once", map[string]interface{}{"path": path})
		token, err = c.tokens.ForceRefresh(ctx, token)
		if err != nil {
			return nil, err
		}
		refreshed = true
		res, err = c.getWithRetry(ctx, path, params, token)
		if err != nil {
			return nil, err
		}
		if res.status == http.StatusUnauthorized {
			return nil, &AuthError{Err: errors.New("access token rejected after refresh")}
		}
	}

	if res.status < 200 || res.status >= 300 {
		return nil, &APIError{StatusCode: res.status, Message: apiMessage(res.body)}
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return nil, &APIError{StatusCode: res.status, Message: fmt.Sprintf("unexpected response body: %v", err)}
	}
	res.autoRefreshed = refreshed
	return res, nil
}

// getWithRetry retries 429 responses with exponential backoff. Every other status is
// returned to the caller as is.
func (c *Client) getWithRetry(ctx context.Context, path string, params url.Values, token string) (*response, error) {
	attempts := 0
	var last RateLimits

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retry.Initial
	policy.MaxInterval = c.retry.MaxInterval

	operation := func() (*response, error) {
		attempts++
		res, err := c.get(ctx, path, params, token)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if res.status == http.StatusTooManyRequests {
			last = res.limits
			c.logger.Warn("STRAVA", "Rate limited", map[string]interface{}{
				"path":    path,
				"attempt": attempts,
				"usage":   res.limits.GlobalUsage,
			})
			return nil, errRateLimited
		}
		return res, nil
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.retry.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if errors.Is(err, errRateLimited) {
		return nil, &RateLimitError{Attempts: attempts, Limits: last}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, token string) (*response, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach strava api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	limits := rateLimitsFromHeader(resp.Header)
	if !limits.empty() {
		c.limits.Set(rateLimitCacheKey, limits, cache.DefaultExpiration)
	}
	return &response{status: resp.StatusCode, body: body, limits: limits}, nil
}

func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "strava api request failed"
}
