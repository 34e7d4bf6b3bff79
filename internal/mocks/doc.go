// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// standardized implementations are shared across test packages. Each mock
// exposes function fields for per-test behavior plus a simple in-memory
// default, and tracks calls where tests need to assert on them.
//
// When adding a new mock:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
package mocks
