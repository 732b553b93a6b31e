package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rosterly/rosterly/db"
)

// ClassService manages class groups and attendance records. Like
// TeamService it trusts the org context resolved upstream.
type ClassService struct {
	PG *sql.DB
}

func NewClassService(pg *sql.DB) *ClassService {
	return &ClassService{PG: pg}
}

type CreateClassInput struct {
	Name      string `json:"name" binding:"required"`
	TeacherID string `json:"teacher_id"`
	Schedule  string `json:"schedule"`
}

// CreateClass inserts a class for the organization.
func (s *ClassService) CreateClass(ctx context.Context, orgID string, input CreateClassInput) (*db.Class, error) {
	now := time.Now()
	class := &db.Class{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Name:      input.Name,
		TeacherID: input.TeacherID,
		Schedule:  input.Schedule,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var teacher, schedule interface{}
	if class.TeacherID != "" {
		teacher = class.TeacherID
	}
	if class.Schedule != "" {
		schedule = class.Schedule
	}
	_, err := s.PG.ExecContext(ctx, `
		INSERT INTO classes (id, org_id, name, teacher_id, schedule, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, class.ID, class.OrgID, class.Name, teacher, schedule, class.IsActive, class.CreatedAt, class.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	return class, nil
}

// ListClasses returns the organization's active classes.
func (s *ClassService) ListClasses(ctx context.Context, orgID string) ([]db.Class, error) {
	rows, err := s.PG.QueryContext(ctx, `
		SELECT id, org_id, name, COALESCE(teacher_id, ''), COALESCE(schedule::text, ''), is_active, created_at, updated_at
		FROM classes
		WHERE org_id = $1 AND is_active = true
		ORDER BY name
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	defer rows.Close()

	classes := make([]db.Class, 0)
	for rows.Next() {
		var cl db.Class
		if err := rows.Scan(&cl.ID, &cl.OrgID, &cl.Name, &cl.TeacherID, &cl.Schedule, &cl.IsActive, &cl.CreatedAt, &cl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, cl)
	}
	return classes, rows.Err()
}

type RecordAttendanceInput struct {
	AttendeeID string    `json:"attendee_id" binding:"required"`
	SessionAt  time.Time `json:"session_at" binding:"required"`
	Status     string    `json:"status" binding:"required"`
}

// RecordAttendance writes one attendance mark for a class session.
func (s *ClassService) RecordAttendance(ctx context.Context, orgID, classID, recordedBy string, input RecordAttendanceInput) (*db.AttendanceRecord, error) {
	rec := &db.AttendanceRecord{
		ID:         uuid.New().String(),
		OrgID:      orgID,
		ClassID:    classID,
		AttendeeID: input.AttendeeID,
		SessionAt:  input.SessionAt,
		Status:     input.Status,
		RecordedBy: recordedBy,
		CreatedAt:  time.Now(),
	}

	_, err := s.PG.ExecContext(ctx, `
		INSERT INTO attendance_records (id, org_id, class_id, attendee_id, session_at, status, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.OrgID, rec.ClassID, rec.AttendeeID, rec.SessionAt, rec.Status, rec.RecordedBy, rec.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	return rec, nil
}

// ListAttendance returns attendance marks for a class, newest session
// first.
func (s *ClassService) ListAttendance(ctx context.Context, orgID, classID string) ([]db.AttendanceRecord, error) {
	rows, err := s.PG.QueryContext(ctx, `
		SELECT id, org_id, class_id, attendee_id, session_at, status, recorded_by, created_at
		FROM attendance_records
		WHERE org_id = $1 AND class_id = $2
		ORDER BY session_at DESC
	`, orgID, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	recs := make([]db.AttendanceRecord, 0)
	for rows.Next() {
		var rec db.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.OrgID, &rec.ClassID, &rec.AttendeeID, &rec.SessionAt, &rec.Status, &rec.RecordedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
