package scraper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadFixtureReturnsBundledEvents(t *testing.T) {
	events := LoadFixture(zap.NewNop())
	require.NotEmpty(t, events)

	for _, ev := range events {
		assert.NotEmpty(t, ev.UID)
		assert.NotEmpty(t, ev.Title)
		assert.False(t, ev.StartTime.IsZero())
		assert.False(t, ev.EndTime.IsZero())
	}
}

func TestFixtureRoundTripsDateTimeFields(t *testing.T) {
	events := LoadFixture(nil)
	require.NotEmpty(t, events)

	raw, err := json.Marshal(events)
	require.NoError(t, err)

	var again []struct {
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	}
	require.NoError(t, json.Unmarshal(raw, &again))
	for i := range again {
		assert.True(t, events[i].StartTime.Equal(again[i].StartTime))
		assert.True(t, events[i].EndTime.Equal(again[i].EndTime))
	}
}

func TestDecodeFixtureCorruptDataReturnsEmpty(t *testing.T) {
	events := decodeFixture([]byte(`{"not":"a list"`), zap.NewNop())
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
