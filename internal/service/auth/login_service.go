package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/store"
)

// maxTransitionRetries bounds the compare-and-set loop when concurrent login
// attempts race on the same account's lockout counters.
const maxTransitionRetries = 3

// LoginService authenticates email/password pairs and drives the account
// lockout state machine. Every observed password check is turned into a
// lockout transition and committed before the request completes; lockout
// state is a security control, not a cache.
type LoginService struct {
	users    store.UserStore
	verifier PasswordVerifier
	policy   domain.LockoutPolicy
	logger   *slog.Logger
	timeFunc func() time.Time // Injectable for testing
}

// NewLoginService creates a LoginService with the given dependencies.
func NewLoginService(
	users store.UserStore,
	verifier PasswordVerifier,
	policy domain.LockoutPolicy,
	log *slog.Logger,
) *LoginService {
	if log == nil {
		log = slog.Default()
	}
	return &LoginService{
		users:    users,
		verifier: verifier,
		policy:   policy,
		logger:   log.With(slog.String("component", "login_service")),
		timeFunc: time.Now,
	}
}

// Authenticate verifies the email/password pair against the stored account.
//
// Returns the account on success. Returns ErrInvalidCredentials for an
// unknown email or wrong password, and ErrAccountLocked when the account is
// inside an active lock window; the API maps both to the same generic
// response so the causes stay indistinguishable to a caller.
//
// A failed check that pushes the attempt counter to the lockout threshold
// still returns plain ErrInvalidCredentials: the lock denies subsequent
// attempts, not the one that causes it.
func (s *LoginService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	now := s.timeFunc()

	if user.Locked(now) {
		log.Debug("login attempt against locked account",
			slog.String("user_id", user.ID.String()),
			slog.Time("locked_until", *user.LockedUntil))
		return nil, ErrAccountLocked
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if err := s.recordAttempt(ctx, user, domain.LoginFailed, now); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	// Successful check: clear any residual counters, including a lock window
	// that expired before this attempt.
	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.recordAttempt(ctx, user, domain.LoginSucceeded, now); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// recordAttempt commits the lockout transition for event, retrying the
// compare-and-set when a concurrent attempt moved the counters first. The
// re-read on retry keeps interleaved failures from under-counting toward the
// threshold.
func (s *LoginService) recordAttempt(
	ctx context.Context,
	user *domain.User,
	event domain.LockoutEvent,
	now time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	from := user.LockoutState()
	for attempt := 0; attempt < maxTransitionRetries; attempt++ {
		to := domain.NextLockoutState(from, event, now, s.policy)

		err := s.users.ApplyLockoutTransition(ctx, user.ID, from, to)
		if err == nil {
			if to.Locked(now) && !from.Locked(now) {
				log.Warn("account locked after repeated failed logins",
					slog.String("user_id", user.ID.String()),
					slog.Int("attempts", to.Attempts),
					slog.Time("locked_until", *to.LockedUntil))
			}
			user.FailedLoginAttempts = to.Attempts
			user.LockedUntil = to.LockedUntil
			return nil
		}

		if !errors.Is(err, store.ErrStaleLockoutState) {
			return fmt.Errorf("failed to persist lockout transition: %w", err)
		}

		// Lost the race; re-read and re-derive from the winner's state.
		fresh, err := s.users.GetByID(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to re-read account after lockout race: %w", err)
		}
		from = fresh.LockoutState()

		// If a concurrent attempt locked the account, this one is denied the
		// same way any attempt during the window would be.
		if event == domain.LoginFailed && from.Locked(now) {
			user.FailedLoginAttempts = from.Attempts
			user.LockedUntil = from.LockedUntil
			return nil
		}
	}

	return fmt.Errorf("failed to persist lockout transition: %w", store.ErrStaleLockoutState)
}
