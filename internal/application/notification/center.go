package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
)

// Action is a serializable call-to-action attached to an in-app
// notification. Command names a handler registered on the center, so
// actions survive marshalling and process restarts.
type Action struct {
	Label   string `json:"label"`
	Command string `json:"command"`
}

// InAppNotification is one entry in a user's in-app notification feed
type InAppNotification struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"user_id"`
	OrderID   uuid.UUID              `json:"order_id"`
	EventType notification.EventType `json:"event_type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Actions   []Action               `json:"actions,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

// CommandHandler executes one named notification action
type CommandHandler func(ctx context.Context, n InAppNotification) error

// Listener observes a user's feed. It is invoked with the user's full
// current notification list after every mutation of that list, so a
// subscriber can rerender without querying the center.
type Listener func(userID uuid.UUID, feed []InAppNotification)

// Center is the in-app notification feed. It keeps a bounded per-user
// history, pushes feed updates to subscribed listeners, and executes
// named action commands against its registry.
type Center struct {
	logger    *zap.Logger
	retention int

	mu            sync.RWMutex
	notifications map[uuid.UUID]*InAppNotification
	byUser        map[uuid.UUID][]uuid.UUID
	listeners     map[int]Listener
	nextListener  int
	commands      map[string]CommandHandler
}

// NewCenter creates a notification center keeping at most retention
// entries per user; retention <= 0 selects the default of 100.
func NewCenter(retention int, logger *zap.Logger) *Center {
	if retention <= 0 {
		retention = 100
	}
	return &Center{
		logger:        logger,
		retention:     retention,
		notifications: make(map[uuid.UUID]*InAppNotification),
		byUser:        make(map[uuid.UUID][]uuid.UUID),
		listeners:     make(map[int]Listener),
		commands:      make(map[string]CommandHandler),
	}
}

// RegisterCommand binds a named action command to its handler
func (c *Center) RegisterCommand(name string, handler CommandHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands[name] = handler
}

// Subscribe registers a feed listener and returns an unsubscribe function
func (c *Center) Subscribe(listener Listener) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = listener
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Show adds a notification to the user's feed and notifies listeners.
// The oldest entries beyond the retention cap are evicted.
func (c *Center) Show(userID, orderID uuid.UUID, eventType notification.EventType, title, message string, actions []Action) InAppNotification {
	n := InAppNotification{
		ID:        uuid.New(),
		UserID:    userID,
		OrderID:   orderID,
		EventType: eventType,
		Title:     title,
		Message:   message,
		Actions:   actions,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.notifications[n.ID] = &n
	c.byUser[userID] = append(c.byUser[userID], n.ID)
	for len(c.byUser[userID]) > c.retention {
		oldest := c.byUser[userID][0]
		c.byUser[userID] = c.byUser[userID][1:]
		delete(c.notifications, oldest)
	}
	listeners, feed := c.snapshotLocked(userID)
	c.mu.Unlock()

	c.broadcast(listeners, userID, feed)
	return n
}

// snapshotLocked copies the listener set and the user's current feed.
// Callers hold c.mu.
func (c *Center) snapshotLocked(userID uuid.UUID) ([]Listener, []InAppNotification) {
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	return listeners, c.feedLocked(userID)
}

func (c *Center) feedLocked(userID uuid.UUID) []InAppNotification {
	feed := make([]InAppNotification, 0, len(c.byUser[userID]))
	for _, id := range c.byUser[userID] {
		if n, ok := c.notifications[id]; ok {
			feed = append(feed, *n)
		}
	}
	sort.Slice(feed, func(i, j int) bool { return feed[i].CreatedAt.After(feed[j].CreatedAt) })
	return feed
}

// broadcast delivers a feed update outside the lock so a listener can
// call back into the center
func (c *Center) broadcast(listeners []Listener, userID uuid.UUID, feed []InAppNotification) {
	for _, l := range listeners {
		c.notify(l, userID, feed)
	}
}

// notify calls one listener, containing panics so a broken subscriber
// cannot take the feed down
func (c *Center) notify(l Listener, userID uuid.UUID, feed []InAppNotification) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("notification listener panicked",
				zap.Any("panic", r),
				zap.String("user_id", userID.String()))
		}
	}()
	l(userID, feed)
}

// Hide removes one notification from the feed
func (c *Center) Hide(id uuid.UUID) error {
	c.mu.Lock()
	n, ok := c.notifications[id]
	if !ok {
		c.mu.Unlock()
		return shared.ErrNotFound
	}
	userID := n.UserID
	delete(c.notifications, id)
	c.byUser[userID] = removeID(c.byUser[userID], id)
	listeners, feed := c.snapshotLocked(userID)
	c.mu.Unlock()

	c.broadcast(listeners, userID, feed)
	return nil
}

// MarkRead flags one notification as read
func (c *Center) MarkRead(id uuid.UUID) error {
	c.mu.Lock()
	n, ok := c.notifications[id]
	if !ok {
		c.mu.Unlock()
		return shared.ErrNotFound
	}
	n.Read = true
	userID := n.UserID
	listeners, feed := c.snapshotLocked(userID)
	c.mu.Unlock()

	c.broadcast(listeners, userID, feed)
	return nil
}

// ClearAll removes every notification for a user
func (c *Center) ClearAll(userID uuid.UUID) {
	c.mu.Lock()
	for _, id := range c.byUser[userID] {
		delete(c.notifications, id)
	}
	delete(c.byUser, userID)
	listeners, feed := c.snapshotLocked(userID)
	c.mu.Unlock()

	c.broadcast(listeners, userID, feed)
}

// ClearByType removes a user's notifications of one event type
func (c *Center) ClearByType(userID uuid.UUID, eventType notification.EventType) {
	c.mu.Lock()
	kept := c.byUser[userID][:0]
	for _, id := range c.byUser[userID] {
		if n, ok := c.notifications[id]; ok && n.EventType == eventType {
			delete(c.notifications, id)
			continue
		}
		kept = append(kept, id)
	}
	c.byUser[userID] = kept
	listeners, feed := c.snapshotLocked(userID)
	c.mu.Unlock()

	c.broadcast(listeners, userID, feed)
}

// ListForUser returns a user's notifications, newest first
func (c *Center) ListForUser(userID uuid.UUID) []InAppNotification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.feedLocked(userID)
}

// UnreadCount returns the number of unread notifications for a user
func (c *Center) UnreadCount(userID uuid.UUID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, id := range c.byUser[userID] {
		if n, ok := c.notifications[id]; ok && !n.Read {
			count++
		}
	}
	return count
}

// ExecuteAction runs the named command attached to a notification. The
// command must both appear on the notification and be registered.
func (c *Center) ExecuteAction(ctx context.Context, notificationID uuid.UUID, command string) error {
	c.mu.RLock()
	n, ok := c.notifications[notificationID]
	if !ok {
		c.mu.RUnlock()
		return shared.ErrNotFound
	}
	snapshot := *n
	attached := false
	for _, action := range n.Actions {
		if action.Command == command {
			attached = true
			break
		}
	}
	handler, registered := c.commands[command]
	c.mu.RUnlock()

	if !attached {
		return shared.NewValidationError("Notification has no action command: " + command)
	}
	if !registered {
		return shared.NewDomainError(shared.CodeInvalidState, "No handler registered for command: "+command)
	}
	return handler(ctx, snapshot)
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
