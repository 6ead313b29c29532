// Package portalsdk is a Go client for the inquiry portal. It handles the
// end-to-end encryption protocol: fetching a one-time key, encrypting request
// fields, and decrypting the re-encrypted verification response. Plaintext
// inquiry data never leaves the process unencrypted.
package portalsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openreport/portal/pkg/cryptox"
)

// Client talks to one portal instance.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a portal client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the portal.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal: %d %s", e.StatusCode, e.Message)
}

// FetchKey requests a fresh one-time encryption key.
func (c *Client) FetchKey(ctx context.Context) (KeyResponse, error) {
	var out KeyResponse
	if err := c.do(ctx, http.MethodGet, "/v1/keys", nil, &out, http.StatusOK); err != nil {
		return KeyResponse{}, err
	}
	return out, nil
}

// Submission is a plaintext inquiry to submit. Phone may be empty.
type Submission struct {
	Title   string
	Content string
	Email   string
	Name    string
	Phone   string
}

// Submit encrypts the submission under a freshly fetched one-time key and
// posts it. Returns the new inquiry id; the auth code arrives by email.
func (c *Client) Submit(ctx context.Context, sub Submission) (string, error) {
	key, err := c.FetchKey(ctx)
	if err != nil {
		return "", err
	}
	cipher, err := cryptox.NewSessionCipher(key.Key)
	if err != nil {
		return "", fmt.Errorf("portal: server returned unusable key: %w", err)
	}

	req := SubmitRequest{KeyID: key.KeyID}
	if req.Title, err = cipher.Encrypt(sub.Title); err != nil {
		return "", err
	}
	if req.Content, err = cipher.Encrypt(sub.Content); err != nil {
		return "", err
	}
	if req.Email, err = cipher.Encrypt(sub.Email); err != nil {
		return "", err
	}
	if req.Name, err = cipher.Encrypt(sub.Name); err != nil {
		return "", err
	}
	if sub.Phone != "" {
		f, err := cipher.Encrypt(sub.Phone)
		if err != nil {
			return "", err
		}
		req.Phone = &f
	}

	var out SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/v1/inquiries", req, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Verify retrieves and decrypts the inquiry matching the (email, auth code)
// pair. The credentials are encrypted under a one-time key before leaving
// this process; the response is decrypted with the key the server returns.
func (c *Client) Verify(ctx context.Context, email, authCode string) (Inquiry, error) {
	key, err := c.FetchKey(ctx)
	if err != nil {
		return Inquiry{}, err
	}
	cipher, err := cryptox.NewSessionCipher(key.Key)
	if err != nil {
		return Inquiry{}, fmt.Errorf("portal: server returned unusable key: %w", err)
	}

	req := VerifyRequest{KeyID: key.KeyID}
	if req.Email, err = cipher.Encrypt(email); err != nil {
		return Inquiry{}, err
	}
	if req.AuthCode, err = cipher.Encrypt(authCode); err != nil {
		return Inquiry{}, err
	}

	var resp VerifyResponse
	if err := c.do(ctx, http.MethodPost, "/v1/inquiries/verify", req, &resp, http.StatusOK); err != nil {
		return Inquiry{}, err
	}
	return decryptInquiry(resp)
}

func decryptInquiry(resp VerifyResponse) (Inquiry, error) {
	cipher, err := cryptox.NewSessionCipher(resp.AESKey)
	if err != nil {
		return Inquiry{}, fmt.Errorf("portal: server returned unusable response key: %w", err)
	}

	data := resp.Data
	out := Inquiry{
		InquiryID: data.ID,
		Status:    data.Status,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
	if out.Title, err = cipher.Decrypt(data.Title); err != nil {
		return Inquiry{}, err
	}
	if out.Content, err = cipher.Decrypt(data.Content); err != nil {
		return Inquiry{}, err
	}
	if out.Email, err = cipher.Decrypt(data.Email); err != nil {
		return Inquiry{}, err
	}
	if out.Name, err = cipher.Decrypt(data.Name); err != nil {
		return Inquiry{}, err
	}
	if data.Phone != nil {
		if out.Phone, err = cipher.Decrypt(*data.Phone); err != nil {
			return Inquiry{}, err
		}
	}
	for _, r := range data.Replies {
		reply := Reply{ID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt}
		if reply.Title, err = cipher.Decrypt(r.Title); err != nil {
			return Inquiry{}, err
		}
		if reply.Content, err = cipher.Decrypt(r.Content); err != nil {
			return Inquiry{}, err
		}
		out.Replies = append(out.Replies, reply)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("portal: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("portal: failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("portal: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("portal: failed to read response: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		var apiErr ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if target != nil {
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("portal: failed to decode response: %w", err)
		}
	}
	return nil
}
