package executil

import (
	"context"
	"sync"
)

// RecordingShell captures shell requests for testing.
type RecordingShell struct {
	mu       sync.Mutex
	Requests []ShellRequest

	// Err is returned for every run when set.
	Err error
}

// Run records the request and returns the configured error.
func (s *RecordingShell) Run(ctx context.Context, req ShellRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	return s.Err
}

// Reset clears recorded requests.
func (s *RecordingShell) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = nil
}
