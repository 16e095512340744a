// Package application tracks citizen service requests such as address
// changes and card renewals.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/notification"
	"github.com/e-ration/eration/internal/storage"
)

var (
	ErrNotFound      = errors.New("application not found")
	ErrInvalidStatus = errors.New("invalid application status")
	ErrInvalidType   = errors.New("application type is required")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in-review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Status        Status `json:"status"`
	SubmittedDate string `json:"submitted_date"`
	LastUpdated   string `json:"last_updated"`
	Comments      string `json:"comments,omitempty"`
}

// Tracker is the application list of one device, newest first. Every change
// is announced on the notification feed.
type Tracker struct {
	mu     sync.Mutex
	store  storage.Adapter
	feed   *notification.Feed
	logger *zap.Logger
	now    func() time.Time
}

func NewTracker(store storage.Adapter, feed *notification.Feed, logger *zap.Logger) *Tracker {
	return &Tracker{store: store, feed: feed, logger: logger, now: time.Now}
}

func (t *Tracker) List(ctx context.Context) []Application {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// Submit files a new pending application.
func (t *Tracker) Submit(ctx context.Context, kind, comments string) (Application, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return Application{}, ErrInvalidType
	}
	today := t.today()
	app := Application{
		ID:            uuid.NewString(),
		Type:          kind,
		Status:        StatusPending,
		SubmittedDate: today,
		LastUpdated:   today,
		Comments:      strings.TrimSpace(comments),
	}

	t.mu.Lock()
	list := append([]Application{app}, t.load(ctx)...)
	err := t.save(ctx, list)
	t.mu.Unlock()
	if err != nil {
		return Application{}, err
	}

	t.announce(ctx, notification.Notification{
		Title:   "Application Submitted",
		Message: fmt.Sprintf("Your %s application has been submitted successfully.", app.Type),
		Type:    notification.SeveritySuccess,
	})
	return app, nil
}

// UpdateStatus moves an application to status, replacing comments when given.
func (t *Tracker) UpdateStatus(ctx context.Context, id string, status Status, comments string) (Application, error) {
	if !status.Valid() {
		return Application{}, ErrInvalidStatus
	}

	t.mu.Lock()
	list := t.load(ctx)
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return Application{}, ErrNotFound
	}
	list[idx].Status = status
	list[idx].LastUpdated = t.today()
	if c := strings.TrimSpace(comments); c != "" {
		list[idx].Comments = c
	}
	app := list[idx]
	err := t.save(ctx, list)
	t.mu.Unlock()
	if err != nil {
		return Application{}, err
	}

	t.announce(ctx, notification.Notification{
		Title:   "Application Status Updated",
		Message: fmt.Sprintf("Your %s application status has been updated to %s.", app.Type, app.Status),
		Type:    severityFor(status),
	})
	return app, nil
}

func severityFor(s Status) notification.Severity {
	switch s {
	case StatusApproved:
		return notification.SeveritySuccess
	case StatusRejected:
		return notification.SeverityError
	default:
		return notification.SeverityInfo
	}
}

func (t *Tracker) announce(ctx context.Context, n notification.Notification) {
	if t.feed == nil {
		return
	}
	if _, err := t.feed.Add(ctx, n); err != nil {
		t.logger.Warn("application notification not stored", zap.Error(err))
	}
}

func (t *Tracker) today() string {
	return t.now().UTC().Format(time.DateOnly)
}

func (t *Tracker) load(ctx context.Context) []Application {
	var list []Application
	ok, err := t.store.Load(ctx, storage.KeyApplications, &list)
	if err != nil {
		t.logger.Warn("applications unreadable, using defaults", zap.Error(err))
	}
	if !ok || err != nil {
		return seed()
	}
	return list
}

func (t *Tracker) save(ctx context.Context, list []Application) error {
	if err := t.store.Save(ctx, storage.KeyApplications, list); err != nil {
		return fmt.Errorf("save applications: %w", err)
	}
	return nil
}

func seed() []Application {
	return []Application{
		{ID: "1", Type: "Address Change Request", Status: StatusApproved, SubmittedDate: "2024-12-15", LastUpdated: "2024-12-20", Comments: "Address verification completed successfully"},
		{ID: "2", Type: "Add Family Member", Status: StatusInReview, SubmittedDate: "2024-12-18", LastUpdated: "2024-12-22"},
		{ID: "3", Type: "Card Renewal", Status: StatusPending, SubmittedDate: "2024-12-20", LastUpdated: "2024-12-20"},
		{ID: "4", Type: "Income Certificate Update", Status: StatusRejected, SubmittedDate: "2024-12-10", LastUpdated: "2024-12-14", Comments: "Insufficient documentation provided"},
	}
}
