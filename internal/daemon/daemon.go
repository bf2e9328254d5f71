package daemon

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
	"gopkg.in/fsnotify.v1"

	"github.com/vaulthook/vaulthook/internal/config"
	"github.com/vaulthook/vaulthook/internal/notice"
	"github.com/vaulthook/vaulthook/internal/router"
	"github.com/vaulthook/vaulthook/internal/utils"
	"github.com/vaulthook/vaulthook/internal/vault"
	"github.com/vaulthook/vaulthook/internal/webhook"
)

// Run watches the vault and relays events until a signal arrives or the
// context is cancelled. When cfgPath names an existing file, edits to it
// are picked up without a restart.
func Run(ctx context.Context, cfgPath string, cfg *config.Config) error {
	root := utils.ExpandTilde(cfg.Root)
	cfg.Root = root

	watcher, err := vault.Open(root, cfg.Exclude, cfg.Delay)
	if err != nil {
		return err
	}
	defer watcher.Close()

	var mu sync.RWMutex
	rt := buildPipeline(cfg)

	watcher.Subscribe(func(ev vault.Event) {
		mu.RLock()
		r := rt
		mu.RUnlock()
		r.Handle(ctx, ev)
	})
	go watcher.Run()

	log.Infof("Watching vault %q at %s", cfg.VaultName, root)

	cfgWatcher := watchConfig(cfgPath)
	if cfgWatcher != nil {
		defer cfgWatcher.Close()
	}
	var cfgEvents chan fsnotify.Event
	var cfgErrors chan error
	if cfgWatcher != nil {
		cfgEvents = cfgWatcher.Events
		cfgErrors = cfgWatcher.Errors
	}

	// Signal handling for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case sig := <-signals:
			log.Infof("Received signal: %s, shutting down...", sig)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-cfgEvents:
			if !ok {
				cfgEvents = nil
				continue
			}
			if filepath.Clean(ev.Name) != filepath.Clean(cfgPath) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			next, err := config.Load(cfgPath)
			if err != nil {
				log.Warnf("Config reload failed: %v", err)
				continue
			}
			next.Root = cfg.Root // the watched root cannot change at runtime
			mu.Lock()
			rt = buildPipeline(next)
			mu.Unlock()
			log.Infof("Config reloaded (enabled=%v, auto_send=%v)", next.Enabled, next.AutoSend)
		case err, ok := <-cfgErrors:
			if !ok {
				cfgErrors = nil
				continue
			}
			log.Warnf("Config watch error: %v", err)
		}
	}
}

// buildPipeline assembles notifier, deliverer and router for one
// settings snapshot.
func buildPipeline(cfg *config.Config) *router.Router {
	n := notice.New(cfg.Notices)
	return router.New(*cfg, webhook.NewDeliverer(n), n)
}

// watchConfig returns a watcher on the config file's directory, or nil
// when there is nothing to watch. The directory is watched because most
// editors replace the file instead of writing it in place.
func watchConfig(cfgPath string) *fsnotify.Watcher {
	if cfgPath == "" {
		return nil
	}
	if _, err := os.Stat(cfgPath); err != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warnf("Config watch unavailable: %v", err)
		return nil
	}
	if err := w.Add(filepath.Dir(cfgPath)); err != nil {
		log.Warnf("Config watch unavailable: %v", err)
		w.Close()
		return nil
	}
	return w
}
