package scanner

import "sync"

// LatestStore keeps the most recent report in memory. Reports are
// never persisted; restarting the process clears it.
type LatestStore struct {
	mu     sync.RWMutex
	report *Report
}

// NewLatestStore creates an empty store.
func NewLatestStore() *LatestStore {
	return &LatestStore{}
}

// Set replaces the stored report.
func (s *LatestStore) Set(report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
}

// Get returns the stored report, or nil when no scan has run yet.
func (s *LatestStore) Get() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}
