package auth

import "time"

// SetTimeFunc overrides the service clock from external test packages.
func (s *LoginService) SetTimeFunc(f func() time.Time) { s.timeFunc = f }
