package mocks

import "github.com/taskflow/taskflow-api/internal/service/auth"

// MockPasswordVerifier implements auth.PasswordVerifier for testing
type MockPasswordVerifier struct {
	// ShouldSucceed determines whether the password comparison should succeed
	ShouldSucceed bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	// CompareCalledWith stores the arguments passed to Compare for verification
	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	if m.ShouldSucceed {
		return nil
	}
	return auth.ErrInvalidCredentials
}

// MockPasswordHasher implements auth.PasswordHasher for testing
type MockPasswordHasher struct {
	// HashFn allows for custom hashing logic in tests
	HashFn func(password string) (string, error)

	// Hashed is the value returned by the default implementation
	Hashed string

	// Err is returned by the default implementation when set
	Err error

	// HashCallCount tracks how many times Hash was called
	HashCallCount int
}

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	m.HashCallCount++

	if m.HashFn != nil {
		return m.HashFn(password)
	}

	if m.Err != nil {
		return "", m.Err
	}

	if m.Hashed != "" {
		return m.Hashed, nil
	}
	return "hashed:" + password, nil
}
