package telemetry

import "time"

// reconnectPolicy tracks consecutive connection failures and yields the
// delay before the next bind attempt. Kept as an explicit struct so the
// retry behavior is testable on its own.
type reconnectPolicy struct {
	base        time.Duration
	cap         time.Duration
	maxFailures int

	failures int
	next     time.Duration
}

func newReconnectPolicy() *reconnectPolicy {
	return &reconnectPolicy{
		base:        time.Second,
		cap:         30 * time.Second,
		maxFailures: 5,
	}
}

// Failure records a consecutive failure. It returns the delay to wait
// before retrying and whether the policy has given up permanently.
func (p *reconnectPolicy) Failure() (delay time.Duration, permanent bool) {
	p.failures++
	if p.failures >= p.maxFailures {
		return 0, true
	}
	if p.next == 0 {
		p.next = p.base
	} else {
		p.next *= 2
		if p.next > p.cap {
			p.next = p.cap
		}
	}
	return p.next, false
}

// Reset clears the failure streak after a successful bind.
func (p *reconnectPolicy) Reset() {
	p.failures = 0
	p.next = 0
}
