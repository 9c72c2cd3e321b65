// Package agent talks to the natural-language assistant service.
//
// The assistant turns free text into an action name plus parameters. It is an optional
// collaborator: when it cannot be reached callers get ErrUnavailable and carry on.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/restobooking/internal/logger"
	"github.com/Domenick1991/restobooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrUnavailable = errors.New("assistant agent unavailable")

const ActionError = "error"

type Request struct {
	UserInput string `json:"userInput"`
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
}

type Response struct {
	Action          string `json:"action"`
	Parameters      Params `json:"parameters"`
	NaturalResponse string `json:"naturalResponse"`
}

// Params are the loosely typed values extracted by the agent.
type Params map[string]any

func (p Params) String(key string) (string, bool) {
	switch v := p[key].(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Int accepts JSON numbers and numeric strings.
func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	session string
	log     *logrus.Entry
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		session: NewSessionID(),
		log:     logger.WithComponent("agent"),
	}
}

func NewSessionID() string {
	return "session_" + uuid.NewString()
}

func (c *Client) SessionID() string {
	return c.session
}

// ResetSession starts a new conversation for calls without an explicit session.
func (c *Client) ResetSession() string {
	c.session = NewSessionID()
	return c.session
}

// Process sends one user utterance. An empty sessionID uses the client's own session.
func (c *Client) Process(ctx context.Context, userInput, sessionID, role string) (*Response, error) {
	if sessionID == "" {
		sessionID = c.session
	}
	if role == "" {
		role = "USER"
	}
	body, err := json.Marshal(Request{UserInput: userInput, SessionID: sessionID, Role: role})
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodPost, "/process", body)
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if resp.Parameters == nil {
		resp.Parameters = Params{}
	}
	c.log.WithFields(logrus.Fields{"session_id": sessionID, "action": resp.Action}).Debug("agent replied")
	return &resp, nil
}

func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// RefreshKnowledge tells the agent that stored data changed.
func (c *Client) RefreshKnowledge(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/refresh-knowledge", []byte("{}"))
	return err
}

// RefreshHook notifies the agent after every commit without holding up the caller.
func (c *Client) RefreshHook() repository.CommitHook {
	return func(ctx context.Context, collections []repository.Collection) {
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
			defer cancel()
			if err := c.RefreshKnowledge(ctx); err != nil {
				c.log.WithError(err).WithField("collections", collections).Warn("knowledge refresh failed")
			}
		}()
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}
	return data, nil
}
