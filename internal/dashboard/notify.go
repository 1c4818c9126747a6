package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/newthinker/tasi/internal/view"
)

// toastTTL is how long a notification stays in the toast container.
const toastTTL = 5 * time.Second

// notify adds a toast and re-renders the toast container. Expired toasts are
// dropped and only the latest NotificationLimit are kept.
func (c *Controller) notify(o *Outcome, kind, message string) {
	now := c.deps.Now()
	n := view.Notification{ID: uuid.NewString(), Type: kind, Message: message, Created: now}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.notes[:0]
	for _, old := range c.notes {
		if now.Sub(old.Created) < toastTTL {
			kept = append(kept, old)
		}
	}
	kept = append(kept, n)
	if limit := c.deps.Options.NotificationLimit; len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	c.notes = kept

	items := append([]view.Notification(nil), c.notes...)
	c.render(o, c.regions.Begin(view.RegionToasts), view.Toasts{Items: items})
}

// Notifications returns the toasts currently shown.
func (c *Controller) Notifications() []view.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]view.Notification(nil), c.notes...)
}
