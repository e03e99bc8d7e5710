package testutil

import "errors"

// ErrSimulated is what failing repository fakes return, so
// tests can assert it comes back wrapped from Manager.Load and friends.
var ErrSimulated = errors.New("simulated storage failure")
