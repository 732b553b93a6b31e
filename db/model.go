package db

import "time"

// User represents a platform account. DefaultOrgID is the pointer the
// org-context resolver follows; it may be empty for a brand-new account.
type User struct {
	ID           string    `json:"id"`
	Provider     string    `json:"provider"`
	ProviderID   string    `json:"provider_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	DefaultOrgID string    `json:"default_org_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Team represents a team within an organization.
type Team struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoachID     string    `json:"coach_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Class represents a class group within an organization.
type Class struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	TeacherID string    `json:"teacher_id,omitempty"`
	Schedule  string    `json:"schedule,omitempty"` // JSON string
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttendanceRecord marks one attendee's presence for one class session.
type AttendanceRecord struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	ClassID    string    `json:"class_id"`
	AttendeeID string    `json:"attendee_id"`
	SessionAt  time.Time `json:"session_at"`
	Status     string    `json:"status"` // present, absent, late, excused
	RecordedBy string    `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
