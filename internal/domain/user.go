package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyFirstName      = errors.New("first name cannot be empty")
	ErrEmptyLastName       = errors.New("last name cannot be empty")
	ErrNameLength          = errors.New("name must be between 2 and 50 characters")
	ErrAgeOutOfRange       = errors.New("age must be between 12 and 120")
	ErrUnderage            = errors.New("users must be older than 13 to register")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrPasswordTooWeak     = errors.New("password must contain an uppercase letter, a lowercase letter and a digit")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// emailRegex follows RFC 5322 closely enough for registration purposes.
var emailRegex = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`,
)

// User represents a registered account of the TaskFlow application.
// It contains profile information, authentication details and the
// login-lockout counters mutated by the login flow.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Age            int       `json:"age"`
	Password       string    `json:"-"` // Plaintext, held only between decode and hashing
	HashedPassword string    `json:"-"` // Never expose the credential hash

	// Lockout bookkeeping. FailedLoginAttempts is reset on a successful login
	// or on the first attempt after LockedUntil has passed. LockedUntil is nil
	// unless the account is inside a lock window.
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`

	// PasswordChangedAt records the most recent credential change
	// (registration or reset).
	PasswordChangedAt time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given profile data and plaintext password.
// It generates a new UUID and sets the creation/update timestamps.
// The caller is responsible for hashing the password before storing the user.
func NewUser(email, firstName, lastName string, age int, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:                uuid.New(),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Age:               age,
		Password:          password,
		PasswordChangedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !emailRegex.MatchString(u.Email) {
		return ErrInvalidEmail
	}

	if u.FirstName == "" {
		return ErrEmptyFirstName
	}
	if u.LastName == "" {
		return ErrEmptyLastName
	}
	if !nameLengthOK(u.FirstName) || !nameLengthOK(u.LastName) {
		return ErrNameLength
	}

	if u.Age < 12 || u.Age > 120 {
		return ErrAgeOutOfRange
	}
	if u.Age <= 13 {
		return ErrUnderage
	}

	// During creation or a password change the plaintext is present and must
	// meet policy. For users loaded from the store only the hash is present.
	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// Locked reports whether the account is inside an active lock window.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// LockoutState returns the account's current lockout state as seen by the
// pure transition function.
func (u *User) LockoutState() LockoutState {
	return LockoutState{
		Attempts:    u.FailedLoginAttempts,
		LockedUntil: u.LockedUntil,
	}
}

// ValidatePassword checks the password policy: 8 to 72 characters containing
// at least one uppercase letter, one lowercase letter and one digit. The upper
// bound is bcrypt's practical input limit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrPasswordTooWeak
	}

	return nil
}

func nameLengthOK(name string) bool {
	return len(name) >= 2 && len(name) <= 50
}
