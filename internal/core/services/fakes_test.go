package services

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// fakeDevice serves a fixed sample and matches by byte equality. It records
// whether two sessions ever overlapped.
type fakeDevice struct {
	mu         sync.Mutex
	sample     domain.Template
	openErr    error
	captureErr error
	compareErr map[string]error
	block      bool // Capture waits for ctx
	hold       time.Duration

	active      int32
	overlapped  atomic.Bool
	opens       atomic.Int32
	closes      atomic.Int32
	comparisons atomic.Int32
}

func (d *fakeDevice) Open(ctx context.Context) error {
	if d.openErr != nil {
		return d.openErr
	}
	if atomic.AddInt32(&d.active, 1) > 1 {
		d.overlapped.Store(true)
	}
	d.opens.Add(1)
	return nil
}

func (d *fakeDevice) Capture(ctx context.Context, purpose domain.CapturePurpose) (domain.Template, error) {
	if d.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d.hold > 0 {
		time.Sleep(d.hold)
	}
	if d.captureErr != nil {
		return nil, d.captureErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sample, nil
}

func (d *fakeDevice) CompareOneToOne(ctx context.Context, a, b domain.Template) (bool, error) {
	d.comparisons.Add(1)
	if err, ok := d.compareErr[string(b)]; ok {
		return false, err
	}
	return bytes.Equal(a, b), nil
}

func (d *fakeDevice) Close() error {
	atomic.AddInt32(&d.active, -1)
	d.closes.Add(1)
	return nil
}

func (d *fakeDevice) setSample(s string) {
	d.mu.Lock()
	d.sample = domain.Template(s)
	d.mu.Unlock()
}

type fakeTemplates struct {
	candidates []domain.Candidate
	err        error
}

func (f *fakeTemplates) ListTemplates(ctx context.Context) ([]domain.Candidate, error) {
	return f.candidates, f.err
}

func candidate(id uint, fp string) domain.Candidate {
	return domain.Candidate{EmployeeID: id, Encoded: domain.EncodeTemplate(domain.Template(fp))}
}

type fakeEmployees struct {
	byID  map[uint]domain.Employee
	calls atomic.Int32
}

func (f *fakeEmployees) GetEmployee(ctx context.Context, id uint) (*domain.Employee, error) {
	f.calls.Add(1)
	emp, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &emp, nil
}

type fakeVacations struct {
	periods []domain.VacationPeriod
	calls   int
}

func (f *fakeVacations) IsOnVacation(ctx context.Context, employeeID uint, day time.Time) (bool, error) {
	f.calls++
	for _, p := range f.periods {
		if p.EmployeeID == employeeID && p.Covers(day) {
			return true, nil
		}
	}
	return false, nil
}

type fakeUnits struct {
	names map[uint]string
}

func (f *fakeUnits) UnitName(ctx context.Context, id uint) (string, error) {
	name, ok := f.names[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return name, nil
}

// memPunches is an in-memory PunchStore honouring the storage contract.
type memPunches struct {
	mu          sync.Mutex
	records     []domain.PunchRecord
	nextID      uint
	windowCalls int
	lastFrom    time.Time
	createErr   error
	closeErr    error
	findDelay   time.Duration // widens the read-then-write gap
}

func (m *memPunches) FindInWindow(ctx context.Context, employeeID uint, from, to time.Time) ([]domain.PunchRecord, error) {
	if m.findDelay > 0 {
		time.Sleep(m.findDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowCalls++
	m.lastFrom = from

	lo, hi := from.Format(domain.DateLayout), to.Format(domain.DateLayout)
	var out []domain.PunchRecord
	for _, r := range m.records {
		day := r.Date.Format(domain.DateLayout)
		if r.EmployeeID == employeeID && day >= lo && day <= hi {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryAt.After(out[j].EntryAt) })
	return out, nil
}

func (m *memPunches) CreateEntry(ctx context.Context, rec *domain.PunchRecord, windowStart time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	lo := windowStart.Format(domain.DateLayout)
	for _, r := range m.records {
		if r.EmployeeID == rec.EmployeeID && r.IsPending() && r.Date.Format(domain.DateLayout) >= lo {
			return domain.ErrPendingPunchExists
		}
	}
	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = rec.EntryAt
	m.records = append(m.records, *rec)
	return nil
}

func (m *memPunches) CloseExit(ctx context.Context, recordID uint, exitAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closeErr != nil {
		return m.closeErr
	}
	for i := range m.records {
		if m.records[i].ID == recordID {
			if !m.records[i].IsPending() {
				return domain.ErrPunchAlreadyClosed
			}
			at := exitAt
			m.records[i].ExitAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memPunches) add(rec domain.PunchRecord) domain.PunchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, rec)
	return rec
}

func (m *memPunches) all() []domain.PunchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PunchRecord(nil), m.records...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

var errCompare = errors.New("vendor compare error")

func at(day, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", day+" "+clock, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time {
	return &t
}
