package store

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offbeatoasis/oasis/pkg/models"
)

func TestSnapshotAddReview(t *testing.T) {
	snap := NewSnapshot(&Dataset{
		Reviews: []models.Review{{UserID: 1, LocationID: 10, Rating: 4}},
	})

	before := snap.Dataset()
	snap.AddReview(models.Review{UserID: 2, LocationID: 10, Rating: 5})
	after := snap.Dataset()

	// The old view must be untouched for in-flight readers.
	assert.Len(t, before.Reviews, 1)
	require.Len(t, after.Reviews, 2)
	assert.Equal(t, int64(2), after.Reviews[1].UserID)
}

func TestSnapshotRefresh(t *testing.T) {
	snap := NewSnapshot(&Dataset{})
	require.NoError(t, snap.Refresh(context.Background(), testCSVStore(t)))

	data := snap.Dataset()
	assert.Len(t, data.Locations, 2)
	assert.Len(t, data.Reviews, 2)
}

func TestSnapshotRefreshFailureKeepsView(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	original := &Dataset{Reviews: []models.Review{{UserID: 1, LocationID: 10, Rating: 4}}}
	snap := NewSnapshot(original)

	err := snap.Refresh(context.Background(), NewCSVStore(t.TempDir(), logger))
	require.Error(t, err)
	assert.Equal(t, original, snap.Dataset())
}
