package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/reelx/internal/shared"
)

const requestIDHeader = "X-Request-ID"

// APIOptions configures an [APIService].
type APIOptions struct {
	Name      string       // label used in logs and metrics
	BaseURL   string       // required
	Client    *http.Client // defaults to [http.DefaultClient]
	RateLimit float64      // requests per second, 0 disables limiting
	Logger    *log.Logger
}

// APIService performs raw HTTP requests against one API base URL.
//
// It classifies failures into [shared.NetworkError] and [shared.APIError] and never retries.
type APIService struct {
	name       string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewAPIService creates a new API service instance.
func NewAPIService(opts APIOptions) *APIService {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Name == "" {
		opts.Name = "api"
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &APIService{
		name:       opts.Name,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.Client,
		limiter:    limiter,
		logger:     opts.Logger,
	}
}

// WithBearer returns a copy whose requests carry token as an Authorization header.
func (a *APIService) WithBearer(token string) *APIService {
	if token == "" {
		return a
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, a.httpClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	cp := *a
	cp.httpClient = oauth2.NewClient(ctx, src)
	return &cp
}

// BaseURL returns the normalized base URL.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	URL        string
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", shared.ErrAPIRequest, r.URL, err)
	}
	return nil
}

// Err converts a non-2xx response into a [shared.APIError], or returns nil.
func (r *APIResponse) Err() error {
	if r.OK() {
		return nil
	}
	return &shared.APIError{StatusCode: r.StatusCode, Message: ServerMessage(r.Body, r.StatusCode), URL: r.URL}
}

// ServerMessage pulls a human readable message out of an error body.
//
// It falls back to the status text.
func ServerMessage(body []byte, status int) string {
	var payload struct {
		Message       string `json:"message"`
		StatusMessage string `json:"status_message"`
		Detail        string `json:"detail"`
		Error         string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, m := range []string{payload.Message, payload.StatusMessage, payload.Detail, payload.Error} {
			if strings.TrimSpace(m) != "" {
				return m
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// Get performs a GET request to path with query parameters and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.do(req)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

// GetJSON performs a GET and decodes a 2xx body into v.
func (a *APIService) GetJSON(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := a.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return resp.Decode(v)
}

func (a *APIService) do(req *http.Request) (*APIResponse, error) {
	method := req.Method + " " + req.URL.Path
	if a.limiter != nil {
		if err := a.limiter.Wait(req.Context()); err != nil {
			return nil, &shared.NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
		}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, shared.GenerateID())

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		recordRequest(a.name, req.Method, "network_error", time.Since(start).Seconds())
		a.logger.Debug("request failed", "service", a.name, "request", method, "error", err)
		return nil, &shared.NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordRequest(a.name, req.Method, "network_error", time.Since(start).Seconds())
		return nil, &shared.NetworkError{Op: req.Method, URL: req.URL.String(), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		URL:        req.URL.String(),
	}

	outcome := "ok"
	if !apiResp.OK() {
		outcome = "api_error"
	}
	recordRequest(a.name, req.Method, outcome, time.Since(start).Seconds())
	a.logger.Debug("request complete", "service", a.name, "request", method, "status", resp.StatusCode, "elapsed", time.Since(start))

	return apiResp, nil
}
