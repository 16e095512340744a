package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-ration/eration/internal/logging"
	"github.com/e-ration/eration/internal/notification"
	"github.com/e-ration/eration/internal/storage"
)

func newTracker() (*Tracker, *notification.Feed) {
	store := storage.NewMemory()
	feed := notification.NewFeed(store, logging.Discard())
	tr := NewTracker(store, feed, logging.Discard())
	tr.now = func() time.Time { return time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC) }
	return tr, feed
}

func TestSeededList(t *testing.T) {
	tr, _ := newTracker()
	list := tr.List(context.Background())
	require.Len(t, list, 4)
	assert.Equal(t, StatusApproved, list[0].Status)
}

func TestSubmitPrependsAndNotifies(t *testing.T) {
	tr, feed := newTracker()
	ctx := context.Background()

	_, err := tr.Submit(ctx, "  ", "")
	require.ErrorIs(t, err, ErrInvalidType)

	app, err := tr.Submit(ctx, "Card Renewal", "urgent")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, app.Status)
	assert.Equal(t, "2025-01-02", app.SubmittedDate)

	list := tr.List(ctx)
	require.Len(t, list, 5)
	assert.Equal(t, app.ID, list[0].ID)

	notes := feed.List(ctx)
	assert.Equal(t, "Application Submitted", notes[0].Title)
	assert.Equal(t, notification.SeveritySuccess, notes[0].Type)
	assert.Contains(t, notes[0].Message, "Card Renewal")
}

func TestUpdateStatus(t *testing.T) {
	tr, feed := newTracker()
	ctx := context.Background()

	_, err := tr.UpdateStatus(ctx, "3", "done", "")
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, err = tr.UpdateStatus(ctx, "missing", StatusApproved, "")
	require.ErrorIs(t, err, ErrNotFound)

	app, err := tr.UpdateStatus(ctx, "3", StatusRejected, "missing photo")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", app.LastUpdated)
	assert.Equal(t, "missing photo", app.Comments)

	n := feed.List(ctx)[0]
	assert.Equal(t, "Application Status Updated", n.Title)
	assert.Equal(t, notification.SeverityError, n.Type)

	app, err = tr.UpdateStatus(ctx, "3", StatusInReview, "")
	require.NoError(t, err)
	assert.Equal(t, "missing photo", app.Comments)
	assert.Equal(t, notification.SeverityInfo, feed.List(ctx)[0].Type)
}
