// Package freqtrade is a client for the trading bot's /api/v1 REST interface.
package freqtrade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/BotView/internal/platform/http"
	"github.com/Alias1177/BotView/models"
)

const apiPrefix = "/api/v1"

// ErrStrategyNotFound is returned when a backtest result holds no entry for the requested strategy
var ErrStrategyNotFound = errors.New("strategy not found in backtest result")

// Client is the bot REST API client
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *httpClient.Client
	logger     zerolog.Logger

	mu    sync.Mutex
	token string
}

// ClientOptions holds options for creating a new bot client
type ClientOptions struct {
	BaseURL         string
	Username        string
	Password        string
	Token           string // preissued JWT; skips login when set
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new bot API client
func NewClient(options ClientOptions) *Client {
	return &Client{
		baseURL:  strings.TrimRight(options.BaseURL, "/"),
		username: options.Username,
		password: options.Password,
		token:    options.Token,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "bot_client").Logger(),
	}
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges basic-auth credentials for a JWT access token
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return errors.New("bot username and password must be set when no token is configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/token/login", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("parsing login response: %w", err)
	}
	if lr.AccessToken == "" {
		return errors.New("login response carried no access token")
	}

	c.mu.Lock()
	c.token = lr.AccessToken
	c.mu.Unlock()

	c.logger.Debug().Msg("Logged in to bot API")
	return nil
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

type sendFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

// call performs an authenticated request, retrying transient failures, and decodes
// the JSON response into out. An expired token is refreshed once.
func (c *Client) call(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	return c.invoke(ctx, c.httpClient.DoRequest, method, endpoint, query, body, out)
}

// callOnce is call without retries, for requests that start work on the bot.
// A rejected token is still refreshed, since the bot did not act on the request.
func (c *Client) callOnce(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	return c.invoke(ctx, c.httpClient.DoOnce, method, endpoint, query, body, out)
}

func (c *Client) invoke(ctx context.Context, send sendFunc, method, endpoint string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	err := c.do(ctx, send, method, endpoint, query, payload, out)

	var statusErr *httpClient.HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized && c.username != "" {
		c.logger.Debug().Str("endpoint", endpoint).Msg("Token rejected, logging in again")
		c.resetToken()
		err = c.do(ctx, send, method, endpoint, query, payload, out)
	}
	return err
}

func (c *Client) do(ctx context.Context, send sendFunc, method, endpoint string, query url.Values, payload []byte, out any) error {
	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + apiPrefix + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("endpoint", endpoint).Msg("Calling bot API")

	resp, err := send(ctx, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Str("response", string(data)).Msg("Error parsing JSON")
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

// StartDataDownload submits a download_data background job. The request is sent once;
// a retried POST could start a second download on the bot.
func (c *Client) StartDataDownload(ctx context.Context, req models.DownloadRequest) (*models.BackgroundJobResponse, error) {
	var resp models.BackgroundJobResponse
	if err := c.callOnce(ctx, http.MethodPost, "/download_data", nil, req, &resp); err != nil {
		return nil, err
	}
	c.logger.Info().Str("job_id", resp.JobID).Strs("pairs", req.Pairs).Strs("timeframes", req.Timeframes).Msg("Data download started")
	return &resp, nil
}

// BackgroundJob fetches the status of one background job
func (c *Client) BackgroundJob(ctx context.Context, jobID string) (*models.BackgroundTaskStatus, error) {
	var status models.BackgroundTaskStatus
	if err := c.call(ctx, http.MethodGet, "/background/"+url.PathEscape(jobID), nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// BackgroundJobs lists all background jobs known to the bot
func (c *Client) BackgroundJobs(ctx context.Context) ([]models.BackgroundTaskStatus, error) {
	var jobs []models.BackgroundTaskStatus
	if err := c.call(ctx, http.MethodGet, "/background", nil, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// OpenTrades returns the currently open trades
func (c *Client) OpenTrades(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	if err := c.call(ctx, http.MethodGet, "/status", nil, nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// Locks returns the active pair locks
func (c *Client) Locks(ctx context.Context) ([]models.Lock, error) {
	var resp models.LocksResponse
	if err := c.call(ctx, http.MethodGet, "/locks", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Locks, nil
}

// Whitelist returns the active pairlist
func (c *Client) Whitelist(ctx context.Context) ([]string, error) {
	var resp models.WhitelistResponse
	if err := c.call(ctx, http.MethodGet, "/whitelist", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Whitelist, nil
}

// BacktestHistoryResult loads a stored backtest result and returns the entry of one strategy
func (c *Client) BacktestHistoryResult(ctx context.Context, filename, strategy string) (*models.BacktestResult, error) {
	query := url.Values{}
	query.Set("filename", filename)
	query.Set("strategy", strategy)

	var resp models.BacktestHistoryResponse
	if err := c.call(ctx, http.MethodGet, "/backtest/history/result", query, nil, &resp); err != nil {
		return nil, err
	}

	result, ok := resp.BacktestResult.Strategy[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, strategy)
	}
	return &result, nil
}
