// Package indexing is a Google Indexing API client for instant URL
// submission. Only job-posting and broadcast-event pages are formally
// eligible, but the API accepts any verified URL.
package indexing

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

	"github.com/amosWeiskopf/seosmith/pkg/engines/googleauth"
)

const defaultBase = "https://indexing.googleapis.com/v3"

const (
	ActionUpdated = "URL_UPDATED"
	ActionDeleted = "URL_DELETED"
)

// Client publishes URL change notifications.
type Client struct {
	http *http.Client
	base string
}

// New builds a Client from a service-account key file.
func New(ctx context.Context, serviceAccountFile string) (*Client, error) {
	hc, err := googleauth.Client(ctx, serviceAccountFile, googleauth.ScopeIndexing)
	if err != nil {
		return nil, err
	}
	hc.Timeout = 30 * time.Second
	return &Client{http: hc, base: defaultBase}, nil
}

// NotificationMetadata is the API's record of the latest notifications for
// a URL.
type NotificationMetadata struct {
	URL          string        `json:"url"`
	LatestUpdate *Notification `json:"latestUpdate,omitempty"`
	LatestRemove *Notification `json:"latestRemove,omitempty"`
}

// Notification is one recorded publish event.
type Notification struct {
	URL        string `json:"url"`
	Type       string `json:"type"`
	NotifyTime string `json:"notifyTime"`
}

// PublishURL notifies Google that a URL was updated or deleted.
func (c *Client) PublishURL(pageURL, action string) (*NotificationMetadata, error) {
	body, err := json.Marshal(map[string]string{"url": pageURL, "type": action})
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	resp, err := c.http.Post(c.base+"/urlNotifications:publish", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("publish %s: HTTP %d: %s", pageURL, resp.StatusCode, trim(data))
	}
	var out struct {
		URLNotificationMetadata NotificationMetadata `json:"urlNotificationMetadata"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out.URLNotificationMetadata, nil
}

// NotificationStatus returns the last recorded notification for a URL.
func (c *Client) NotificationStatus(pageURL string) (*NotificationMetadata, error) {
	resp, err := c.http.Get(c.base + "/urlNotifications/metadata?url=" + url.QueryEscape(pageURL))
	if err != nil {
		return nil, fmt.Errorf("notification status %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notification status %s: HTTP %d: %s", pageURL, resp.StatusCode, trim(data))
	}
	var out NotificationMetadata
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func trim(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
