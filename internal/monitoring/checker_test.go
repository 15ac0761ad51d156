package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sells-group/imagegate/internal/cache"
	"github.com/sells-group/imagegate/internal/declog"
)

func TestCheckerDefaultsInterval(t *testing.T) {
	c := NewChecker(New(), declog.New(10), cache.New(10), 0)
	assert.Equal(t, 5*time.Minute, c.interval)
}

func TestCheckerStopsOnCancel(t *testing.T) {
	c := NewChecker(New(), declog.New(10), cache.New(10), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("checker did not stop after context cancellation")
	}
}

func TestCheckerTracksStatus(t *testing.T) {
	dl := declog.New(10)
	mon := New()
	c := NewChecker(mon, dl, cache.New(10), time.Minute)

	c.check(zap.NewNop())
	assert.Equal(t, StatusHealthy, c.lastStatus)
}
