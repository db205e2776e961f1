package batcher

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// backoffController tracks consecutive retryable failures. Delays start at the
// initial interval and double on each failure; a failure whose delay would pass
// the ceiling latches the controller failed for good.
type backoffController struct {
	policy    *backoff.ExponentialBackOff
	ceiling   time.Duration
	delay     time.Duration
	notBefore time.Time
	failed    error
}

func newBackoffController(initial, ceiling time.Duration) *backoffController {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initial
	policy.RandomizationFactor = 0
	policy.Multiplier = 2
	policy.MaxInterval = 2 * ceiling
	policy.MaxElapsedTime = 0
	policy.Reset()

	return &backoffController{policy: policy, ceiling: ceiling}
}

// escalate records a retryable failure at now. It returns the delay before the
// next attempt, or latched == true if the engine must give up.
func (b *backoffController) escalate(now time.Time, cause error) (delay time.Duration, latched bool) {
	if b.failed != nil {
		return 0, true
	}

	next := b.policy.NextBackOff()
	if next == backoff.Stop || next > b.ceiling {
		b.failed = &permanentError{cause: cause}
		b.notBefore = time.Time{}
		return 0, true
	}

	b.delay = next
	b.notBefore = now.Add(next)
	return next, false
}

// reset clears the delay after a successful batch. A latched failure stays.
func (b *backoffController) reset() {
	b.policy.Reset()
	b.delay = 0
	b.notBefore = time.Time{}
}

// wait returns how long dispatch must still hold off at now.
func (b *backoffController) wait(now time.Time) time.Duration {
	if b.notBefore.IsZero() || !now.Before(b.notBefore) {
		return 0
	}
	return b.notBefore.Sub(now)
}

func (b *backoffController) err() error {
	return b.failed
}
