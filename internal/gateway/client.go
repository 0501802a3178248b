// Package gateway is the HTTP client stations and member commands use to
// talk to the campusgate API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

const maxResponseBody = 1 << 20

// TokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithStationID tags recorded events with the station that scanned them.
func WithStationID(id string) Option {
	return func(c *Client) { c.stationID = id }
}

type Client struct {
	base      string
	http      *http.Client
	tokens    TokenSource
	stationID string
}

// New returns a client for the API rooted at baseURL, e.g.
// http://localhost:3001/api. Calls are never retried.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetUserByCode resolves a badge code. An unknown code is a KindNotFound
// error, including a 200 response that carries no user.
func (c *Client) GetUserByCode(ctx context.Context, code string) (types.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return types.User{}, validationError("User code is required.")
	}

	var resp types.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/bycode/"+url.PathEscape(code), nil, nil, &resp); err != nil {
		return types.User{}, err
	}
	if resp.User == nil {
		return types.User{}, &Error{Kind: KindNotFound, Status: http.StatusOK, Message: "User not found."}
	}
	return *resp.User, nil
}

func (c *Client) RecordAccess(ctx context.Context, code string, kind types.EventKind) (types.RecordAccessResponse, error) {
	req := types.RecordAccessRequest{
		UserCode:  strings.TrimSpace(code),
		EventType: kind,
		StationID: c.stationID,
	}
	if req.UserCode == "" || req.EventType == "" {
		return types.RecordAccessResponse{}, validationError("User code and event type are required.")
	}
	if !kind.Valid() {
		return types.RecordAccessResponse{}, validationError("Invalid event type. Must be 'entry' or 'exit'.")
	}

	var resp types.RecordAccessResponse
	if err := c.do(ctx, http.MethodPost, "/accesslogs/record", nil, req, &resp); err != nil {
		return types.RecordAccessResponse{}, err
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, req types.RegisterRequest) error {
	var resp types.RegisterResponse
	return c.do(ctx, http.MethodPost, "/registro", nil, req, &resp)
}

func (c *Client) Login(ctx context.Context, email, password string) (types.LoginResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return types.LoginResponse{}, validationError("Correo y contraseña son obligatorios")
	}

	var resp types.LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", nil, types.LoginRequest{Email: email, Password: password}, &resp)
	return resp, err
}

func (c *Client) ListAccessHistory(ctx context.Context, q types.HistoryQuery) (types.HistoryPage, error) {
	params := url.Values{}
	set := func(k, v string) {
		if v != "" {
			params.Set(k, v)
		}
	}
	set("user_code", q.UserCode)
	set("start_date", q.StartDate)
	set("end_date", q.EndDate)
	set("type", q.Type)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var page types.HistoryPage
	err := c.do(ctx, http.MethodGet, "/accesslogs", params, nil, &page)
	return page, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return transportError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload map[string]any
		if json.Unmarshal(raw, &payload) != nil {
			payload = nil
		}
		return statusError(resp.StatusCode, payload)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: "unexpected response body", Err: err}
	}
	return nil
}
