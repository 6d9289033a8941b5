package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locationapp-backend/internal/config"
	"locationapp-backend/internal/jobs"
)

type noopAvailability struct{}

func (noopAvailability) ReleaseExpiredRooms(ctx context.Context) ([]string, error) { return nil, nil }

func TestNewScheduler(t *testing.T) {
	lome := time.FixedZone("GMT", 0)

	t.Run("Hourly release", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{ReleaseExpiredRooms: "0 0 * * * *"}}
		s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{Availability: noopAvailability{}}, cfg), lome)
		require.NoError(t, err)
		assert.True(t, s.IsRunning())

		s.Start()
		defer s.Stop()
		require.Eventually(t, func() bool { return !s.NextRun().IsZero() }, time.Second, 10*time.Millisecond)
		next := s.NextRun().In(lome)
		assert.Equal(t, 0, next.Minute())
		assert.Equal(t, 0, next.Second())
		assert.True(t, next.After(time.Now()))
	})

	t.Run("Bad spec", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{ReleaseExpiredRooms: "every hour"}}
		_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{Availability: noopAvailability{}}, cfg), lome)
		assert.Error(t, err)
	})
}
