package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offbeatoasis/oasis/pkg/models"
)

func TestReviewMessageSerialization(t *testing.T) {
	jobID := uuid.New()
	message := ReviewMessage{
		JobID: jobID,
		Review: models.ReviewSubmission{
			UserID:     100,
			LocationID: 3,
			Rating:     4.5,
		},
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(message)
	require.NoError(t, err)

	var decoded ReviewMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, jobID, decoded.JobID)
	assert.Equal(t, int64(100), decoded.Review.UserID)
	assert.Equal(t, int64(3), decoded.Review.LocationID)
	assert.Equal(t, 4.5, decoded.Review.Rating)
	assert.Equal(t, 0, decoded.RetryCount)
}

func TestReviewMessageRetryCountRoundTrip(t *testing.T) {
	message := ReviewMessage{JobID: uuid.New(), RetryCount: 2}

	data, err := json.Marshal(message)
	require.NoError(t, err)

	var decoded ReviewMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.RetryCount)
}
