package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/storage"
)

// Severity is the display style of a feed entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ErrNotFound is returned when marking an unknown notification.
var ErrNotFound = errors.New("notification not found")

// Notification is one entry of the in-app notifications panel.
type Notification struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Type    Severity `json:"type"`
	Date    string   `json:"date"`
	Read    bool     `json:"read"`
}

// Feed is the notification list of one device, newest first.
type Feed struct {
	mu     sync.Mutex
	store  storage.Adapter
	logger *zap.Logger
	now    func() time.Time
}

// NewFeed builds a feed persisting to store.
func NewFeed(store storage.Adapter, logger *zap.Logger) *Feed {
	return &Feed{store: store, logger: logger, now: time.Now}
}

// List returns the stored notifications, or the welcome set when none were saved yet.
func (f *Feed) List(ctx context.Context) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(ctx)
}

// UnreadCount returns the number of unread entries.
func (f *Feed) UnreadCount(ctx context.Context) int {
	count := 0
	for _, n := range f.List(ctx) {
		if !n.Read {
			count++
		}
	}
	return count
}

// Add prepends a notification, filling in id and date when empty.
func (f *Feed) Add(ctx context.Context, n Notification) (Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Date == "" {
		n.Date = f.now().UTC().Format(time.DateOnly)
	}
	if n.Type == "" {
		n.Type = SeverityInfo
	}
	list := append([]Notification{n}, f.load(ctx)...)
	if err := f.save(ctx, list); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// MarkRead flags one notification as read.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.load(ctx)
	found := false
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	return f.save(ctx, list)
}

// MarkAllRead flags every notification as read.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.load(ctx)
	for i := range list {
		list[i].Read = true
	}
	return f.save(ctx, list)
}

func (f *Feed) load(ctx context.Context) []Notification {
	var list []Notification
	ok, err := f.store.Load(ctx, storage.KeyNotifications, &list)
	if err != nil {
		f.logger.Warn("notifications unreadable, starting fresh", zap.Error(err))
	}
	if !ok || err != nil {
		return welcome()
	}
	return list
}

func (f *Feed) save(ctx context.Context, list []Notification) error {
	if err := f.store.Save(ctx, storage.KeyNotifications, list); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

func welcome() []Notification {
	return []Notification{
		{ID: "welcome-distribution", Title: "Ration Distribution Available", Message: "Your monthly ration is now available for collection at your designated Fair Price Shop.", Type: SeveritySuccess, Date: "2024-12-22"},
		{ID: "welcome-renewal", Title: "Card Renewal Reminder", Message: "Your ration card is valid until January 2030. No action required at this time.", Type: SeverityInfo, Date: "2024-12-20"},
		{ID: "welcome-maintenance", Title: "System Maintenance", Message: "The e-Ration portal will be under maintenance on Dec 25, 2024 from 2 AM to 6 AM.", Type: SeverityWarning, Date: "2024-12-14", Read: true},
	}
}
