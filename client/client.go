package client

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
	"time"

	"newsdesk/internal/article/model"
	authsvc "newsdesk/internal/auth/service"

	"github.com/gorilla/websocket"
)

// Client calls the newsdesk API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// APIError represents a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func IsNotFound(err error) bool     { return IsStatus(err, http.StatusNotFound) }
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// NewClient constructs an API client. baseURL may include a path prefix such as /api.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Me(ctx context.Context, token string) (authsvc.Identity, error) {
	var id authsvc.Identity
	err := c.call(ctx, http.MethodGet, "/auth/me", token, nil, &id)
	return id, err
}

// ListArticles returns every article, newest first. An empty category lists all.
func (c *Client) ListArticles(ctx context.Context, category string) ([]model.Article, error) {
	path := "/articles"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var articles []model.Article
	if err := c.call(ctx, http.MethodGet, path, "", nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *Client) GetArticle(ctx context.Context, id string) (model.Article, error) {
	var a model.Article
	err := c.call(ctx, http.MethodGet, "/articles/"+url.PathEscape(id), "", nil, &a)
	return a, err
}

func (c *Client) CreateArticle(ctx context.Context, token string, d model.Draft) (model.Article, error) {
	var a model.Article
	err := c.call(ctx, http.MethodPost, "/articles", token, d, &a)
	return a, err
}

func (c *Client) UpdateArticle(ctx context.Context, token, id string, d model.Draft) (model.Article, error) {
	var a model.Article
	err := c.call(ctx, http.MethodPut, "/articles/"+url.PathEscape(id), token, d, &a)
	return a, err
}

func (c *Client) DeleteArticle(ctx context.Context, token, id string) error {
	return c.call(ctx, http.MethodDelete, "/articles/"+url.PathEscape(id), token, nil, nil)
}

// Watch streams live article events to fn until ctx is cancelled or the connection drops.
func (c *Client) Watch(ctx context.Context, fn func(model.Event)) error {
	wsURL, err := c.websocketURL()
	if err != nil {
		return err
	}
	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var evt model.Event
		if err := conn.ReadJSON(&evt); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		fn(evt)
	}
}

// websocketURL maps http(s)://host/prefix onto ws(s)://host/ws; the hub is not mounted under /api.
func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	addAuthHeader(req, token)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(raw, &errResp); err != nil || errResp.Message == "" {
			errResp.Message = strings.TrimSpace(string(raw))
			if errResp.Message == "" {
				errResp.Message = http.StatusText(resp.StatusCode)
			}
		}
		return &APIError{Status: resp.StatusCode, Message: errResp.Message}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func addAuthHeader(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
