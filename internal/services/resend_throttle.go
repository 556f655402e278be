package services

import "time"

// ResendThrottle enforces a minimum interval between code issues for one e-mail.
type ResendThrottle struct {
	Cooldown time.Duration
}

func NewResendThrottle(cooldown time.Duration) *ResendThrottle {
	return &ResendThrottle{Cooldown: cooldown}
}

// Check returns a *CooldownError while lastIssued+Cooldown is in the future.
// A nil lastIssued (no prior code) is always allowed.
func (t *ResendThrottle) Check(lastIssued *time.Time, now time.Time) error {
	if lastIssued == nil || t.Cooldown <= 0 {
		return nil
	}
	elapsed := now.Sub(*lastIssued)
	if elapsed < t.Cooldown {
		remaining := t.Cooldown - elapsed
		if remaining > t.Cooldown {
			// lastIssued in the future: clock skew between app nodes
			remaining = t.Cooldown
		}
		return &CooldownError{Remaining: remaining}
	}
	return nil
}
