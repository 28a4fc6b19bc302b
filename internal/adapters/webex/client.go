package webex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sparkbot/internal/core/domain"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://webexapis.com/v1/"

var ErrAPI = errors.New("webex API error")

// Client talks to the handful of REST endpoints the bot needs.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(c *Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		c.baseURL = baseURL
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type itemList[T any] struct {
	Items []T `json:"items"`
}

type createMessage struct {
	RoomID   string `json:"roomId"`
	Markdown string `json:"markdown"`
}

// SendMessage posts markdown into a room.
func (c *Client) SendMessage(ctx context.Context, roomID, text string) error {
	if text == "" {
		return domain.ErrEmptyMessage
	}

	return c.do(ctx, http.MethodPost, "messages", nil, createMessage{RoomID: roomID, Markdown: text}, nil)
}

func (c *Client) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	var msg domain.Message
	err := c.do(ctx, http.MethodGet, "messages/"+url.PathEscape(messageID), nil, nil, &msg)
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

func (c *Client) Me(ctx context.Context) (*domain.Person, error) {
	return c.GetPerson(ctx, "me")
}

func (c *Client) GetPerson(ctx context.Context, personID string) (*domain.Person, error) {
	var p domain.Person
	err := c.do(ctx, http.MethodGet, "people/"+url.PathEscape(personID), nil, nil, &p)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Client) ListPeople(ctx context.Context, email string) ([]domain.Person, error) {
	var list itemList[domain.Person]
	err := c.do(ctx, http.MethodGet, "people", url.Values{"email": {email}}, nil, &list)
	if err != nil {
		return nil, err
	}

	return list.Items, nil
}

func (c *Client) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	var r domain.Room
	err := c.do(ctx, http.MethodGet, "rooms/"+url.PathEscape(roomID), nil, nil, &r)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (c *Client) ListTeamMemberships(ctx context.Context, teamID string) ([]domain.TeamMembership, error) {
	var list itemList[domain.TeamMembership]
	err := c.do(ctx, http.MethodGet, "team/memberships", url.Values{"teamId": {teamID}}, nil, &list)
	if err != nil {
		return nil, err
	}

	return list.Items, nil
}

func (c *Client) ListWebhooks(ctx context.Context) ([]domain.Webhook, error) {
	var list itemList[domain.Webhook]
	err := c.do(ctx, http.MethodGet, "webhooks", nil, nil, &list)
	if err != nil {
		return nil, err
	}

	return list.Items, nil
}

func (c *Client) CreateWebhook(ctx context.Context, hook domain.Webhook) (*domain.Webhook, error) {
	var created domain.Webhook
	err := c.do(ctx, http.MethodPost, "webhooks", nil, hook, &created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, webhookID string) error {
	return c.do(ctx, http.MethodDelete, "webhooks/"+url.PathEscape(webhookID), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("error creating request %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error executing request %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).
			Str("body", string(msg)).Msg("webex API call failed")
		return fmt.Errorf("%w: %s %s returned %d", ErrAPI, method, path, res.StatusCode)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response %w", err)
	}

	return nil
}
