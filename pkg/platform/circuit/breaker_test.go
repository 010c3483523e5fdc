package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New("nats")
	assert.Equal(t, "nats", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
}

func TestBreakerOpensOnConsecutiveFailures(t *testing.T) {
	b := New("nats", WithFailureThreshold(2))

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)

	_, change = b.RecordFailure()
	assert.False(t, change.Opened, "an open circuit does not re-open")
}

func TestBreakerSuccessClearsFailureStreak(t *testing.T) {
	b := New("nats", WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestBreakerClosesAfterSuccessStreak(t *testing.T) {
	b := New("amqp", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()

	usePrimary, _ := b.RecordSuccess()
	assert.False(t, usePrimary)

	b.RecordFailure()
	usePrimary, _ = b.RecordSuccess()
	assert.False(t, usePrimary, "a failure restarts the success streak")

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReset(t *testing.T) {
	b := New("amqp", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	assert.False(t, b.IsOpen())
}

func TestBreakerConcurrentFailuresOpenOnce(t *testing.T) {
	b := New("amqp", WithFailureThreshold(10))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, opened)
}
