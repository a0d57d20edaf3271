// Package webhook talks to the externally hosted campaign automation webhooks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"autolynx-portal/internal/contacts"

	"go.uber.org/zap"
)

const (
	DefaultChatTimeout   = 60 * time.Second
	DefaultUploadTimeout = 120 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	ChatTimeout   time.Duration
	UploadTimeout time.Duration
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

type Client struct {
	httpClient    *http.Client
	chatTimeout   time.Duration
	uploadTimeout time.Duration
	logger        *zap.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:    opts.HTTPClient,
		chatTimeout:   opts.ChatTimeout,
		uploadTimeout: opts.UploadTimeout,
		logger:        opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.chatTimeout <= 0 {
		c.chatTimeout = DefaultChatTimeout
	}
	if c.uploadTimeout <= 0 {
		c.uploadTimeout = DefaultUploadTimeout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// --- Payloads ---

// ChatRequest is the body the chat webhook expects.
type ChatRequest struct {
	ChatInput string `json:"chatInput"`
	SessionID string `json:"sessionId"`
}

// LegacyChatRequest is the older contact-list body still accepted by some
// automation workflows.
type LegacyChatRequest struct {
	SessionID   string `json:"sessionId"`
	ContactsRaw string `json:"contactsRaw"`
}

// Result is a decoded 2xx webhook response.
type Result struct {
	StatusCode int
	Body       any
	Message    string
}

// --- Helper Functions ---

func (c *Client) sendRequest(ctx context.Context, url string, timeout time.Duration, body io.Reader, contentType string) (*Result, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutErr(ctx, err) {
			c.logger.Warn("webhook request timed out", zap.String("url", url), zap.Duration("timeout", timeout))
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeoutErr(ctx, err) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	c.logger.Debug("webhook responded",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.String("content_type", resp.Header.Get("Content-Type")),
		zap.Duration("elapsed", time.Since(start)),
	)

	decoded, decodeErr := decodeBody(resp.Header.Get("Content-Type"), respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := ExtractMessage(decoded)
		return nil, &StatusError{
			Code:    resp.StatusCode,
			Status:  resp.Status,
			Message: msg,
			Body:    decoded,
		}
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       decoded,
		Message:    Normalize(decoded),
	}, nil
}

// decodeBody decodes JSON responses and wraps anything else as {"message": text}.
func decodeBody(contentType string, body []byte) (any, error) {
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return map[string]any{"message": string(body)}, nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return v, nil
}

func isTimeoutErr(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) postJSON(ctx context.Context, url string, timeout time.Duration, payload any) (*Result, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}
	return c.sendRequest(ctx, url, timeout, bytes.NewReader(data), "application/json")
}

// --- Chat Methods ---

// SendChat posts one chat turn for sessionID.
func (c *Client) SendChat(ctx context.Context, url, chatInput, sessionID string) (*Result, error) {
	return c.postJSON(ctx, url, c.chatTimeout, ChatRequest{
		ChatInput: chatInput,
		SessionID: sessionID,
	})
}

// SendContactsRaw posts pasted contact text using the legacy body shape.
func (c *Client) SendContactsRaw(ctx context.Context, url, sessionID, contactsRaw string) (*Result, error) {
	return c.postJSON(ctx, url, c.chatTimeout, LegacyChatRequest{
		SessionID:   sessionID,
		ContactsRaw: contactsRaw,
	})
}

// SubmitContacts posts already parsed contacts as a JSON-encoded chat input.
func (c *Client) SubmitContacts(ctx context.Context, url, sessionID string, list []contacts.Contact) (*Result, error) {
	encoded, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode contacts: %w", err)
	}
	return c.SendChat(ctx, url, string(encoded), sessionID)
}

// --- Upload Methods ---

// UploadCSV forwards a contact file as the multipart field "file".
func (c *Client) UploadCSV(ctx context.Context, url, filename string, r io.Reader) (*Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	c.logger.Info("uploading contact file", zap.String("filename", filename), zap.Int("bytes", body.Len()))
	return c.sendRequest(ctx, url, c.uploadTimeout, body, writer.FormDataContentType())
}
