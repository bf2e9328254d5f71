package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vaulthook/vaulthook/internal/notice"
)

// noticeTitle heads every notice raised by the deliverer.
const noticeTitle = "Vaulthook"

// Deliverer performs single-attempt JSON POSTs to the configured
// endpoint. Failures are logged and surfaced as notices, never retried.
type Deliverer struct {
	client   *http.Client
	notifier notice.Notifier
}

// NewDeliverer creates a deliverer with a configured HTTP client.
func NewDeliverer(notifier notice.Notifier) *Deliverer {
	return &Deliverer{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		notifier: notifier,
	}
}

// Send serializes body to JSON and POSTs it to url. Fire-and-forget:
// the outcome is reported through the notifier and the log only.
func (d *Deliverer) Send(ctx context.Context, url string, body any) {
	buf, err := json.Marshal(body)
	if err != nil {
		log.Errorf("Failed to encode payload: %v", err)
		d.notifier.Notify(noticeTitle, "Failed to encode webhook payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		log.Errorf("Failed to build request: %v", err)
		d.notifier.Notify(noticeTitle, "Failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Warnf("Webhook request to %s failed: %v", url, err)
		d.notifier.Notify(noticeTitle, "Webhook request failed")
		return
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused; cap the read.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("Webhook returned status %d", resp.StatusCode)
		d.notifier.Notify(noticeTitle, fmt.Sprintf("Webhook returned status %d", resp.StatusCode))
		return
	}

	log.Debugf("Webhook delivered to %s (%d)", url, resp.StatusCode)
}
