// Package alerts keeps the ordered list of transient user-facing messages
// shown by the CLI.
package alerts

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is how long an alert stays visible unless dismissed.
const DefaultTimeout = 5 * time.Second

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

type Alert struct {
	ID       string
	Message  string
	Severity Severity
}

// Channel is safe for concurrent use.
type Channel struct {
	mu      sync.Mutex
	alerts  []Alert
	timers  map[string]*time.Timer
	timeout time.Duration
	newID   func() string
}

// New returns a Channel whose alerts expire after timeout.
// A zero timeout keeps alerts until they are dismissed.
func New(timeout time.Duration) *Channel {
	return &Channel{
		timers:  make(map[string]*time.Timer),
		timeout: timeout,
		newID:   func() string { return uuid.NewString() },
	}
}

// Push appends an alert and returns its id.
func (c *Channel) Push(message string, severity Severity) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.newID()
	c.alerts = append(c.alerts, Alert{ID: id, Message: message, Severity: severity})
	if c.timeout > 0 {
		c.timers[id] = time.AfterFunc(c.timeout, func() { c.Dismiss(id) })
	}
	return id
}

// Dismiss removes the alert with the given id. Unknown ids are ignored.
func (c *Channel) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	c.alerts = slices.DeleteFunc(c.alerts, func(a Alert) bool { return a.ID == id })
}

// List returns a copy of the live alerts in insertion order.
func (c *Channel) List() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.alerts)
}

// Close stops pending expiry timers. Alerts already listed are kept.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}
