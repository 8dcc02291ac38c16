// Package groupme speaks the GroupMe bot protocol: the callback payload the
// platform posts to us and the bots/post call we answer with.
package groupme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultPostURL = "https://api.groupme.com/v3/bots/post"

// Callback is the body GroupMe posts for every group message.
type Callback struct {
	Text       string `json:"text"`
	Name       string `json:"name"`
	SenderType string `json:"sender_type"`
	SenderID   string `json:"sender_id"`
	GroupID    string `json:"group_id"`
}

// DecodeCallback never fails: a malformed body yields an empty callback.
func DecodeCallback(r io.Reader) Callback {
	var cb Callback
	if err := json.NewDecoder(r).Decode(&cb); err != nil {
		return Callback{}
	}
	return cb
}

type Client struct {
	botID   string
	postURL string
	http    *http.Client
}

func NewClient(botID, postURL string, timeout time.Duration) *Client {
	if postURL == "" {
		postURL = DefaultPostURL
	}
	return &Client{
		botID:   botID,
		postURL: postURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type postRequest struct {
	BotID string `json:"bot_id"`
	Text  string `json:"text"`
}

// Notify posts text as the bot. Failures are returned, never retried.
func (c *Client) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(postRequest{BotID: c.botID, Text: text})
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.postURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build post: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post to groupme: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("post to groupme: unexpected status %d", resp.StatusCode)
	}
	return nil
}
