package notice

import (
	"github.com/gen2brain/beeep"
	log "github.com/sirupsen/logrus"
)

// Notifier surfaces transient user-visible messages.
type Notifier interface {
	Notify(title, message string)
}

// Desktop shows notices as desktop notifications.
type Desktop struct{}

func (Desktop) Notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		log.Warnf("Notification failed: %v", err)
	}
}

// Muted drops all notices.
type Muted struct{}

func (Muted) Notify(title, message string) {}

// New returns a Desktop notifier when notices are enabled, Muted otherwise.
func New(enabled bool) Notifier {
	if enabled {
		return Desktop{}
	}
	return Muted{}
}
