package services

import (
	"context"
	"fmt"
	"log"

	"bioponto/internal/core/domain"
)

// Comparer is the one-to-one primitive the scan delegates to.
type Comparer interface {
	Compare(a, b domain.Template) (bool, error)
}

// MatchResult is the outcome of a successful scan.
type MatchResult struct {
	EmployeeID uint
	Scanned    int
}

// MatchEngine runs 1:N identification over an ordered candidate list.
// It is stateless.
type MatchEngine struct{}

// NewMatchEngine creates a new match engine
func NewMatchEngine() *MatchEngine {
	return &MatchEngine{}
}

// Identify compares sample against candidates in order and returns the first
// match. Candidates with empty templates or a failing comparison are logged and
// skipped. Returns domain.ErrNotRecognized when nothing matches.
func (e *MatchEngine) Identify(ctx context.Context, cmp Comparer, sample domain.Template, candidates []domain.Candidate) (MatchResult, error) {
	if len(sample) == 0 {
		return MatchResult{}, fmt.Errorf("%w: empty sample", domain.ErrCaptureFailed)
	}

	scanned := 0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return MatchResult{Scanned: scanned}, fmt.Errorf("%w: scan aborted: %w", domain.ErrDeviceUnavailable, err)
		}

		stored := domain.DecodeTemplate(c.Encoded)
		if len(stored) == 0 {
			log.Printf("⚠️ Skipping employee %d: empty template", c.EmployeeID)
			continue
		}

		scanned++
		ok, err := cmp.Compare(sample, stored)
		if err != nil {
			log.Printf("⚠️ Skipping employee %d: compare failed: %v", c.EmployeeID, err)
			continue
		}
		if ok {
			return MatchResult{EmployeeID: c.EmployeeID, Scanned: scanned}, nil
		}
	}

	return MatchResult{Scanned: scanned}, domain.ErrNotRecognized
}
