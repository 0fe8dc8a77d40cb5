package models

import (
	"time"

	"bioponto/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth: Operators
// ============================================================

// User represents users table (back-office operators)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	FullName  string         `gorm:"size:150" json:"full_name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'OPERATOR'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// ============================================================
// Master: Units
// ============================================================

// Unit represents unidades table
type Unit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Unit) TableName() string {
	return "unidades"
}

func (u *Unit) ToDomain() domain.Unit {
	return domain.Unit{ID: u.ID, Name: u.Name}
}

// ============================================================
// Employees
// ============================================================

// Employee represents funcionarios table
type Employee struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:150;not null;index" json:"name"`
	CPF           string     `gorm:"column:cpf;size:14;uniqueIndex;not null" json:"cpf"`
	Role          string     `gorm:"size:100" json:"role"`
	BiometricID   *string    `gorm:"column:biometric_id;type:text" json:"-"`
	UnitID        uint       `gorm:"index;not null" json:"unit_id"`
	Matricula     string     `gorm:"size:30;uniqueIndex;not null" json:"matricula"`
	ShiftType     string     `gorm:"size:10;not null;default:'8h'" json:"shift_type"`
	Phone         string     `gorm:"size:20" json:"phone"`
	Email         *string    `gorm:"size:100;uniqueIndex" json:"email"`
	AdmissionDate *time.Time `gorm:"type:date" json:"admission_date"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Unit          Unit       `gorm:"foreignKey:UnitID" json:"-"`
}

func (Employee) TableName() string {
	return "funcionarios"
}

// EmployeeResponse DTO
type EmployeeResponse struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	CPF           string     `json:"cpf"`
	Role          string     `json:"role"`
	UnitID        uint       `json:"unit_id"`
	UnitName      string     `json:"unit_name,omitempty"`
	Matricula     string     `json:"matricula"`
	ShiftType     string     `json:"shift_type"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	AdmissionDate *time.Time `json:"admission_date"`
	HasBiometric  bool       `json:"has_biometric"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (e *Employee) ToResponse() *EmployeeResponse {
	resp := &EmployeeResponse{
		ID:            e.ID,
		Name:          e.Name,
		CPF:           e.CPF,
		Role:          e.Role,
		UnitID:        e.UnitID,
		UnitName:      e.Unit.Name,
		Matricula:     e.Matricula,
		ShiftType:     e.ShiftType,
		Phone:         e.Phone,
		AdmissionDate: e.AdmissionDate,
		HasBiometric:  e.BiometricID != nil && *e.BiometricID != "",
		CreatedAt:     e.CreatedAt,
	}
	if e.Email != nil {
		resp.Email = *e.Email
	}
	return resp
}

func (e *Employee) ToDomain() *domain.Employee {
	emp := &domain.Employee{
		ID:        e.ID,
		Name:      e.Name,
		CPF:       e.CPF,
		Matricula: e.Matricula,
		UnitID:    e.UnitID,
		ShiftType: domain.ShiftType(e.ShiftType),
	}
	if e.Email != nil {
		emp.Email = *e.Email
	}
	if e.BiometricID != nil {
		emp.BiometricID = *e.BiometricID
	}
	return emp
}

// ============================================================
// Punches & Vacations
// ============================================================

// PunchRecord represents registros_ponto table
type PunchRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EmployeeID uint       `gorm:"index:idx_punch_employee_date;not null" json:"employee_id"`
	UnitID     uint       `gorm:"index;not null" json:"unit_id"`
	Date       time.Time  `gorm:"type:date;index:idx_punch_employee_date;not null" json:"date"`
	EntryAt    time.Time  `gorm:"not null" json:"entry_at"`
	ExitAt     *time.Time `json:"exit_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Employee   Employee   `gorm:"foreignKey:EmployeeID" json:"-"`
}

func (PunchRecord) TableName() string {
	return "registros_ponto"
}

func (p *PunchRecord) ToDomain() domain.PunchRecord {
	return domain.PunchRecord{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		UnitID:     p.UnitID,
		Date:       p.Date,
		EntryAt:    p.EntryAt,
		ExitAt:     p.ExitAt,
		CreatedAt:  p.CreatedAt,
	}
}

// PunchRecordResponse DTO
type PunchRecordResponse struct {
	ID           uint     `json:"id"`
	EmployeeID   uint     `json:"employee_id"`
	EmployeeName string   `json:"employee_name,omitempty"`
	UnitID       uint     `json:"unit_id"`
	Date         string   `json:"date"`
	EntryTime    string   `json:"entry_time"`
	ExitTime     *string  `json:"exit_time"`
	WorkedHours  *float64 `json:"worked_hours"`
}

func (p *PunchRecord) ToResponse() *PunchRecordResponse {
	resp := &PunchRecordResponse{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		EmployeeName: p.Employee.Name,
		UnitID:       p.UnitID,
		Date:         p.Date.Format(domain.DateLayout),
		EntryTime:    p.EntryAt.Format(domain.TimeLayout),
	}
	if p.ExitAt != nil {
		exit := p.ExitAt.Format(domain.TimeLayout)
		hours := p.ExitAt.Sub(p.EntryAt).Hours()
		resp.ExitTime = &exit
		resp.WorkedHours = &hours
	}
	return resp
}

// VacationPeriod represents ferias table
type VacationPeriod struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmployeeID uint      `gorm:"index;not null" json:"employee_id"`
	StartDate  time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null" json:"end_date"`
	Note       string    `gorm:"size:255" json:"note"`
	CreatedBy  *uint     `json:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	Employee   Employee  `gorm:"foreignKey:EmployeeID" json:"-"`
}

func (VacationPeriod) TableName() string {
	return "ferias"
}

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Master
		&Unit{},
		&Employee{},
		// Attendance
		&PunchRecord{},
		&VacationPeriod{},
	)
}
