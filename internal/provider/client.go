package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/five82/pitchside/internal/logging"
	"github.com/five82/pitchside/internal/state"
)

// Fetcher is the set of upstream calls the worker depends on. It is
// implemented by *Client and can be mocked in tests.
type Fetcher interface {
	FetchMatches(ctx context.Context, date string) ([]MatchRow, error)
	FetchUpcoming(ctx context.Context, date string) ([]state.UpcomingMatch, error)
	FetchMatchDetails(ctx context.Context, matchID string) (state.MatchDetail, error)
	FetchMatchDetailsBasic(ctx context.Context, matchID string) (state.MatchDetail, error)
	FetchLeagueTeams(ctx context.Context, leagueID int) ([]state.TeamAnalysis, error)
	FetchSquad(ctx context.Context, teamID int) (Squad, error)
	FetchPlayer(ctx context.Context, playerID int) (state.PlayerDetail, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

const (
	defaultBaseURL   = "https://www.fotmob.com"
	defaultUserAgent = "pitchside/0.1"
	requestTimeout   = 5 * time.Second
	maxBodyBytes     = 8 << 20
)

// Config configures a Client. Zero values select defaults.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	Breaker    BreakerConfig
}

// Client talks to the FotMob JSON API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *logging.Logger
	breaker   *Breaker
	useBreak  bool
	flight    singleflight.Group
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = requestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: ua,
		logger:    logger.With("component", "provider"),
		breaker:   NewBreaker(cfg.Breaker),
		useBreak:  cfg.Breaker.Enabled,
	}, nil
}

// get fetches rel and returns the raw body. Identical concurrent requests
// share one round trip.
func (c *Client) get(ctx context.Context, op, target string, rel *url.URL, header http.Header) ([]byte, error) {
	if c == nil {
		return nil, &FetchError{Op: op, Target: target, Cause: errors.New("client is nil")}
	}
	reqURL := c.baseURL.ResolveReference(rel)
	out, err, _ := c.flight.Do(reqURL.String(), func() (any, error) {
		if c.useBreak {
			if err := c.breaker.Allow(); err != nil {
				c.logger.Warn("circuit breaker rejected request", "op", op, "state", c.breaker.State())
				return nil, &FetchError{Op: op, Target: target, Cause: err}
			}
		}
		raw, transport, reqErr := c.execute(ctx, op, target, reqURL, header)
		if c.useBreak {
			if transport {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}
	raw, ok := out.([]byte)
	if !ok {
		return nil, &FetchError{Op: op, Target: target, Cause: errors.Newf("unexpected payload type %T", out)}
	}
	return raw, nil
}

// execute performs one GET. transport reports whether the failure should
// count against the breaker.
func (c *Client) execute(ctx context.Context, op, target string, reqURL *url.URL, header http.Header) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, false, &FetchError{Op: op, Target: target, Cause: errors.Wrap(err, "create request")}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, &FetchError{Op: op, Target: target, Cause: errors.Wrap(err, "execute request")}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, &FetchError{Op: op, Target: target, Cause: errors.Wrap(err, "read response body")}
	}
	if resp.StatusCode >= 400 {
		cause := errors.Newf("api %s returned status %d", reqURL.Path, resp.StatusCode)
		return nil, resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests, fetchErr(op, target, cause, raw)
	}
	return raw, false, nil
}

// getJSON fetches rel and decodes it into dest. An empty or null body
// leaves dest untouched and reports empty=true.
func (c *Client) getJSON(ctx context.Context, op, target string, rel *url.URL, header http.Header, dest any) (raw []byte, empty bool, err error) {
	raw, err = c.get(ctx, op, target, rel, header)
	if err != nil {
		return nil, false, err
	}
	if isEmptyBody(raw) {
		return raw, true, nil
	}
	if err := sonic.Unmarshal(raw, dest); err != nil {
		return raw, false, fetchErr(op, target, errors.Wrap(err, "decode response"), raw)
	}
	return raw, false, nil
}

func isEmptyBody(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func apiURL(path string, query url.Values) *url.URL {
	return &url.URL{Path: path, RawQuery: query.Encode()}
}
