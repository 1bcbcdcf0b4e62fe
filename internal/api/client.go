// Package api is the JSON client for the club website's events endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/clubdesk/internal/constants"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/models"
)

// TokenSource supplies the bearer token of the signed-in user, if any.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	BaseURL    string // events endpoint, e.g. https://club.example/api/events.php
	AuthURL    string // login endpoint; defaults to BaseURL
	Timeout    time.Duration
	Tokens     TokenSource
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	authURL string
	http    *http.Client
	tokens  TokenSource
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	authURL := opts.AuthURL
	if authURL == "" {
		authURL = opts.BaseURL
	}
	return &Client{
		baseURL: strings.TrimSpace(opts.BaseURL),
		authURL: strings.TrimSpace(authURL),
		http:    httpClient,
		tokens:  opts.Tokens,
	}
}

// envelope is the union of every response shape the backend sends.
type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Events  []models.Event  `json:"events,omitempty"`
	Event   *models.Event   `json:"event,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Deleted int             `json:"deleted,omitempty"`
	Updated int             `json:"updated,omitempty"`
	Token   string          `json:"token,omitempty"`
	User    *struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user,omitempty"`
}

// List returns every event.
func (c *Client) List(ctx context.Context) ([]models.Event, error) {
	return c.listAction(ctx, constants.ActionList)
}

// Upcoming returns the events the backend considers upcoming.
func (c *Client) Upcoming(ctx context.Context) ([]models.Event, error) {
	return c.listAction(ctx, constants.ActionUpcoming)
}

// Past returns the events the backend considers past.
func (c *Client) Past(ctx context.Context) ([]models.Event, error) {
	return c.listAction(ctx, constants.ActionPast)
}

func (c *Client) listAction(ctx context.Context, action constants.Action) ([]models.Event, error) {
	var env envelope
	if err := c.do(ctx, c.baseURL, http.MethodGet, action, nil, &env); err != nil {
		return nil, err
	}
	if env.Events == nil {
		return []models.Event{}, nil
	}
	return env.Events, nil
}

// Create submits one draft and returns the stored event.
func (c *Client) Create(ctx context.Context, draft models.EventDraft) (models.Event, error) {
	var env envelope
	if err := c.do(ctx, c.baseURL, http.MethodPost, constants.ActionCreate, draft, &env); err != nil {
		return models.Event{}, err
	}
	if env.Event != nil {
		return *env.Event, nil
	}
	ev := models.Event{
		Title:       draft.Title,
		Date:        draft.Date,
		Time:        draft.Time,
		Location:    draft.Location,
		Description: draft.Description,
		Type:        draft.Type,
		IsRecurring: draft.IsRecurring,
	}
	if len(env.ID) > 0 && string(env.ID) != "null" {
		ev.ID = strings.Trim(string(env.ID), `"`)
	}
	return ev, nil
}

// Edit updates the fields set in updates on one occurrence.
func (c *Client) Edit(ctx context.Context, id string, updates models.EventUpdates) error {
	body := struct {
		ID string `json:"id"`
		models.EventUpdates
	}{ID: id, EventUpdates: updates}
	return c.do(ctx, c.baseURL, http.MethodPost, constants.ActionEdit, body, &envelope{})
}

// EditByTitle updates every upcoming occurrence with the given title and
// returns how many the backend reports as updated.
func (c *Client) EditByTitle(ctx context.Context, req models.EditByTitleRequest) (int, error) {
	var env envelope
	if err := c.do(ctx, c.baseURL, http.MethodPost, constants.ActionEditByTitle, req, &env); err != nil {
		return 0, err
	}
	return env.Updated, nil
}

// Delete removes the matching occurrences and returns the deleted count.
func (c *Client) Delete(ctx context.Context, req models.DeleteRequest) (int, error) {
	var env envelope
	if err := c.do(ctx, c.baseURL, http.MethodPost, constants.ActionDelete, req, &env); err != nil {
		return 0, err
	}
	return env.Deleted, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (models.Session, error) {
	body := map[string]string{"username": username, "password": password}
	var env envelope
	if err := c.do(ctx, c.authURL, http.MethodPost, constants.ActionLogin, body, &env); err != nil {
		return models.Session{}, err
	}
	if env.Token == "" {
		return models.Session{}, &APIError{Action: constants.ActionLogin, Status: http.StatusOK, Message: "no token in login response"}
	}
	s := models.Session{
		Username:   username,
		Token:      env.Token,
		LoggedInAt: time.Now(),
	}
	if env.User != nil {
		if env.User.Username != "" {
			s.Username = env.User.Username
		}
		s.Role = env.User.Role
	}
	return s, nil
}

// Logout tells the backend to drop the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.authURL, http.MethodPost, constants.ActionLogout, struct{}{}, &envelope{})
}

func (c *Client) do(ctx context.Context, endpoint, method string, action constants.Action, body any, out *envelope) error {
	if endpoint == "" {
		return ErrNotConfigured
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("action", string(action))
	u.RawQuery = q.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", action, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger.Debug("API request", "action", action, "method", method, "request_id", requestID)
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		logger.Warn("API request failed", "action", action, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrNetwork, action, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %v", ErrNetwork, action, err)
	}
	logger.Debug("API response", "action", action, "status", res.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	decodeErr := json.Unmarshal(raw, out)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(out.Message)
		}
		return &APIError{Action: action, Status: res.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return &APIError{Action: action, Status: res.StatusCode, Message: "malformed response from server"}
	}
	if (out.Success != nil && !*out.Success) || out.Error != "" {
		msg := out.Error
		if msg == "" {
			msg = out.Message
		}
		return &APIError{Action: action, Status: res.StatusCode, Message: msg}
	}
	return nil
}
