package router

import (
	"context"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/vaulthook/vaulthook/internal/config"
	"github.com/vaulthook/vaulthook/internal/notice"
	"github.com/vaulthook/vaulthook/internal/vault"
	"github.com/vaulthook/vaulthook/pkg/payload"
)

const noticeTitle = "Vaulthook"

// Deliverer sends a payload to a destination URL, fire-and-forget.
type Deliverer interface {
	Send(ctx context.Context, url string, body any)
}

// Router maps vault events onto webhook payloads and hands them to the
// deliverer, applying the configured gating:
//
//   - master switch off: nothing is sent
//   - vault lifecycle events additionally require auto_send
//   - focus events additionally require their trigger flag
//   - an empty URL aborts with a configuration-missing notice
type Router struct {
	cfg      config.Config
	deliver  Deliverer
	notifier notice.Notifier
}

// New creates a router over a settings snapshot.
func New(cfg config.Config, deliver Deliverer, notifier notice.Notifier) *Router {
	return &Router{cfg: cfg, deliver: deliver, notifier: notifier}
}

// Handle processes one vault event.
func (r *Router) Handle(ctx context.Context, ev vault.Event) {
	if !r.cfg.Enabled {
		return
	}
	if ev.Kind.Automatic() && !r.cfg.AutoSend {
		return
	}
	if ev.Kind == vault.KindFileOpen && !r.cfg.TriggerOnFileOpen {
		return
	}
	if ev.Kind == vault.KindPaneChange && !r.cfg.TriggerOnPaneChange {
		return
	}
	if r.cfg.URL == "" {
		r.missingURL()
		return
	}

	if ev.Kind == vault.KindRename {
		r.deliver.Send(ctx, r.cfg.URL, payload.NewRename(r.cfg.VaultName, ev.OldPath, ev.Path))
		return
	}
	r.deliver.Send(ctx, r.cfg.URL, r.filePayload(string(ev.Kind), ev.Path))
}

// SendTest sends the fixed test payload. Only a configured URL is
// required; the master switch and auto_send do not apply.
func (r *Router) SendTest(ctx context.Context) {
	if r.cfg.URL == "" {
		r.missingURL()
		return
	}
	r.deliver.Send(ctx, r.cfg.URL, payload.NewTest(r.cfg.VaultName))
}

// SendDocument sends a manually triggered webhook for one document.
// Like SendTest, it bypasses the master switch and auto_send.
func (r *Router) SendDocument(ctx context.Context, relPath string) {
	if r.cfg.URL == "" {
		r.missingURL()
		return
	}
	r.deliver.Send(ctx, r.cfg.URL, r.filePayload("manual", relPath))
}

func (r *Router) filePayload(event, relPath string) payload.File {
	return payload.NewFile(r.cfg.VaultName, event, relPath, r.statSize(relPath))
}

// statSize looks up the file size. A failed stat (e.g. a race with
// deletion) reports the size as absent rather than dropping the event.
func (r *Router) statSize(relPath string) *int64 {
	fi, err := os.Stat(filepath.Join(r.cfg.Root, filepath.FromSlash(relPath)))
	if err != nil || fi.IsDir() {
		return nil
	}
	size := fi.Size()
	return &size
}

func (r *Router) missingURL() {
	log.Warn("No webhook URL configured")
	r.notifier.Notify(noticeTitle, "No webhook URL configured")
}
