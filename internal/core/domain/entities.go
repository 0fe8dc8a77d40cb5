package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Role represents operator role in the system
type Role string

const (
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

// Wire formats shared with terminals and the payroll system
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Employee represents an employee in the domain layer
type Employee struct {
	ID          uint
	Name        string
	CPF         string
	Matricula   string
	Email       string
	UnitID      uint
	ShiftType   ShiftType
	BiometricID string // Base64 template as stored
}

// Unit represents a workplace that owns terminals
type Unit struct {
	ID   uint
	Name string
}

// VacationPeriod blocks punches between Start and End, both inclusive
type VacationPeriod struct {
	ID         uint
	EmployeeID uint
	Start      time.Time
	End        time.Time
}

// Covers reports whether day falls inside the period.
func (v VacationPeriod) Covers(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(v.Start)) && !d.After(DateOf(v.End))
}

// PunchRecord is one entry/exit cycle
type PunchRecord struct {
	ID         uint
	EmployeeID uint
	UnitID     uint
	Date       time.Time // calendar day of the entry
	EntryAt    time.Time
	ExitAt     *time.Time
	CreatedAt  time.Time
}

// IsPending is true while the exit has not been recorded.
func (p PunchRecord) IsPending() bool {
	return p.ExitAt == nil
}

// PunchKind tells whether an accepted punch opened or closed a record.
type PunchKind string

const (
	PunchEntry PunchKind = "entry"
	PunchExit  PunchKind = "exit"
)

// PunchOutcome is the result of an accepted punch.
type PunchOutcome struct {
	Kind         PunchKind
	Employee     Employee
	Record       PunchRecord
	ReportedDate time.Time // entry's calendar day, also for overnight exits
	At           time.Time
	Message      string
}

// PunchRegistration is forwarded to the payroll system after a local commit.
type PunchRegistration struct {
	RecordID    uint    `json:"-"`
	EmployeeID  uint    `json:"funcionario_id"`
	UnitID      uint    `json:"unidade_id"`
	Date        string  `json:"data"`
	EntryTime   string  `json:"hora_entrada"`
	ExitTime    *string `json:"hora_saida"`
	BiometricID string  `json:"id_biometrico"`
}

// IdempotencyKey names this forwarding attempt. Entry and exit of the same
// record are distinct deliveries; retries of either reuse the key.
func (r PunchRegistration) IdempotencyKey() string {
	stage := "entry"
	if r.ExitTime != nil {
		stage = "exit"
	}
	return fmt.Sprintf("punch-%d-%s", r.RecordID, stage)
}

// Notification is a best-effort message to a person.
type Notification struct {
	Subject   string `json:"subject"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

// CapturePurpose selects the vendor capture mode.
type CapturePurpose string

const (
	PurposeEnroll CapturePurpose = "ENROLL"
	PurposeVerify CapturePurpose = "VERIFY"
)

// Template is an opaque fingerprint template.
type Template []byte

// Candidate is one stored template offered to the identification scan.
type Candidate struct {
	EmployeeID uint
	Encoded    string
}

// DecodeTemplate turns the stored text back into template bytes. Text that is not
// valid Base64 is used as raw bytes. Blank text yields nil.
func DecodeTemplate(text string) Template {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
		return decoded
	}
	return Template(trimmed)
}

// EncodeTemplate is the storage representation of a template.
func EncodeTemplate(t Template) string {
	return base64.StdEncoding.EncodeToString(t)
}

// DateOf truncates t to local midnight of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
