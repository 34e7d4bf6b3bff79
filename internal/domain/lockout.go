package domain

import "time"

// LockoutPolicy holds the tunable parameters of the login-lockout machine.
// The defaults match the values the service has always shipped with; they are
// surfaced through configuration so they can be changed without a redeploy.
type LockoutPolicy struct {
	// MaxAttempts is the failed-attempt count at which the account locks.
	MaxAttempts int

	// LockWindow is how long the account stays locked once MaxAttempts
	// is reached.
	LockWindow time.Duration
}

// DefaultLockoutPolicy returns the stock policy: 5 attempts, 15 minutes.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts: 5,
		LockWindow:  15 * time.Minute,
	}
}

// LockoutState is the persisted lockout portion of an account record.
// Attempts is the consecutive failed-login count; LockedUntil is nil unless
// the account is (or was) inside a lock window.
type LockoutState struct {
	Attempts    int
	LockedUntil *time.Time
}

// Locked reports whether the state is inside an active lock window at now.
func (s LockoutState) Locked(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// LockoutEvent is an input to the lockout transition function.
type LockoutEvent int

// Lockout events observed by the login flow.
const (
	// LoginFailed records a password check that did not match.
	LoginFailed LockoutEvent = iota

	// LoginSucceeded records a password check that matched.
	LoginSucceeded
)

// NextLockoutState computes the lockout state that follows from observing
// event at time now. It is a pure function; persisting the result is the
// caller's responsibility.
//
// Rules:
//   - An expired lock window is cleared before the event is applied, so the
//     first attempt after expiry counts from zero.
//   - A failure increments the attempt counter; reaching policy.MaxAttempts
//     starts a lock window of policy.LockWindow from now.
//   - A success resets the counter and clears any lock marker.
//
// Note the machine does not reject anything itself: a failure that triggers
// the lock yields the same outcome to its own request as any other failure.
// The lock is enforced by the login flow denying subsequent attempts.
func NextLockoutState(state LockoutState, event LockoutEvent, now time.Time, policy LockoutPolicy) LockoutState {
	// Clear a naturally expired lock before counting the new event.
	if state.LockedUntil != nil && !now.Before(*state.LockedUntil) {
		state = LockoutState{}
	}

	switch event {
	case LoginSucceeded:
		return LockoutState{}
	case LoginFailed:
		next := LockoutState{Attempts: state.Attempts + 1, LockedUntil: state.LockedUntil}
		if next.Attempts >= policy.MaxAttempts {
			until := now.Add(policy.LockWindow)
			next.LockedUntil = &until
		}
		return next
	default:
		return state
	}
}
