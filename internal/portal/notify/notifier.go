package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AdminNotifier posts new-inquiry alerts to the notification gateway, which
// owns channel selection (email, message, push) per admin. One call per
// admin; the worker fans out and isolates failures.
type AdminNotifier struct {
	endpoint   string
	httpClient *http.Client
}

func NewAdminNotifier(endpoint string) *AdminNotifier {
	return &AdminNotifier{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type adminNotification struct {
	AdminID    string `json:"adminId"`
	AdminEmail string `json:"adminEmail"`
	InquiryID  string `json:"inquiryId"`
}

// NotifyAdmin alerts one admin about a new inquiry.
func (n *AdminNotifier) NotifyAdmin(ctx context.Context, adminID, adminEmail, inquiryID string) error {
	payload, err := json.Marshal(adminNotification{
		AdminID:    adminID,
		AdminEmail: adminEmail,
		InquiryID:  inquiryID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify admin %s: %w", adminID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify admin %s: gateway returned %d", adminID, resp.StatusCode)
	}
	return nil
}
