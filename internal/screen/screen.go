// Package screen applies hard-cut filtering and momentum ranking to
// the candidate set.
package screen

import (
	"sort"

	"github.com/wonny/momentum/internal/indicator"
	"github.com/wonny/momentum/pkg/logger"
)

// Predicate is one named hard-cut condition. A candidate survives the
// screen only when every predicate keeps it.
type Predicate struct {
	Name string
	Keep func(indicator.Candidate) bool
}

// Screener filters candidates through a predicate conjunction.
type Screener struct {
	predicates []Predicate
	logger     *logger.Logger
}

// NewScreener creates a new screener. An empty predicate set keeps
// every candidate.
func NewScreener(predicates []Predicate, log *logger.Logger) *Screener {
	return &Screener{
		predicates: predicates,
		logger:     log,
	}
}

// Screen returns the surviving candidates in input order, plus a
// per-predicate rejection count. A candidate is counted against the
// first predicate that rejects it.
func (s *Screener) Screen(candidates []indicator.Candidate) ([]indicator.Candidate, map[string]int) {
	passed := make([]indicator.Candidate, 0, len(candidates))
	filtered := make(map[string]int)

	for _, candidate := range candidates {
		reason := s.check(candidate)
		if reason == "" {
			passed = append(passed, candidate)
		} else {
			filtered[reason]++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input":  len(candidates),
		"passed":       len(passed),
		"filtered_out": len(candidates) - len(passed),
		"filters":      filtered,
	}).Info("Screening completed")

	return passed, filtered
}

// check returns empty string if the candidate passes, otherwise the
// name of the first failing predicate.
func (s *Screener) check(candidate indicator.Candidate) string {
	for _, p := range s.predicates {
		if !p.Keep(candidate) {
			return p.Name
		}
	}
	return ""
}

// Rank sorts candidates by momentum descending. The sort is stable, so
// ties keep their universe order and identical inputs always produce
// identical output.
func Rank(candidates []indicator.Candidate) []indicator.Candidate {
	ranked := make([]indicator.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MomentumPct > ranked[j].MomentumPct
	})

	return ranked
}
