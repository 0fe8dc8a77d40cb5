package device

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"bioponto/internal/core/domain"
)

// Simulator stands in for the reader in development. Each capture returns the
// current content of a file (Base64 or raw), so a developer can "present" a
// finger by writing an employee's stored template into it.
type Simulator struct {
	mu     sync.Mutex
	file   string
	sample domain.Template
}

// NewSimulator creates a simulator reading its sample from file; an empty
// path serves whatever SetSample last stored.
func NewSimulator(file string) *Simulator {
	return &Simulator{file: file}
}

// SetSample replaces the sample served when no file is configured
func (s *Simulator) SetSample(t domain.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sample = t
}

func (s *Simulator) Open(ctx context.Context) error {
	return ctx.Err()
}

func (s *Simulator) Capture(ctx context.Context, _ domain.CapturePurpose) (domain.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.file != "" {
		raw, err := os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("%w: read simulator sample: %w", domain.ErrCaptureFailed, err)
		}
		return domain.DecodeTemplate(string(raw)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.sample), nil
}

func (s *Simulator) CompareOneToOne(_ context.Context, a, b domain.Template) (bool, error) {
	return bytes.Equal(a, b), nil
}

func (s *Simulator) Close() error {
	return nil
}
