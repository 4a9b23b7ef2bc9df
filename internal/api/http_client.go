package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

func (c *Client) getJSON(ctx context.Context, op, endpoint string) (int, []byte, error) {
	return c.send(ctx, op, http.MethodGet, endpoint, nil)
}

func (c *Client) postJSON(ctx context.Context, op, endpoint string, body any) (int, []byte, error) {
	return c.send(ctx, op, http.MethodPost, endpoint, body)
}

// send performs one request. A nil error means a response arrived, whatever its
// status; transport failures come back as *NetworkError.
func (c *Client) send(ctx context.Context, op, method, endpoint string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &NetworkError{Op: op, Err: err}
	}
	return resp.StatusCode, raw, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// statusError builds the RequestError for a non-success response, preferring
// the server's own message.
func statusError(op string, status int, body []byte) *RequestError {
	return &RequestError{Op: op, Status: status, Message: errorMessage(status, body)}
}

func errorMessage(status int, body []byte) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if s, ok := payload.Detail.(string); ok && s != "" {
			return s
		}
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Detail != nil {
			if raw, err := json.Marshal(payload.Detail); err == nil {
				return string(raw)
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
