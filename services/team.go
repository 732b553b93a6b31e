package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rosterly/rosterly/db"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamService manages team rows. Authorization happens upstream in the
// authz middleware; every query here is already org-scoped by the
// trusted context the handler passes in.
type TeamService struct {
	PG *sql.DB
}

func NewTeamService(pg *sql.DB) *TeamService {
	return &TeamService{PG: pg}
}

type CreateTeamInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CoachID     string `json:"coach_id"`
}

// CreateTeam inserts a team for the organization.
func (s *TeamService) CreateTeam(ctx context.Context, orgID string, input CreateTeamInput) (*db.Team, error) {
	now := time.Now()
	team := &db.Team{
		ID:          uuid.New().String(),
		OrgID:       orgID,
		Name:        input.Name,
		Description: input.Description,
		CoachID:     input.CoachID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var coach interface{}
	if team.CoachID != "" {
		coach = team.CoachID
	}
	_, err := s.PG.ExecContext(ctx, `
		INSERT INTO teams (id, org_id, name, description, coach_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, team.ID, team.OrgID, team.Name, team.Description, coach, team.IsActive, team.CreatedAt, team.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// ListTeams returns the organization's active teams.
func (s *TeamService) ListTeams(ctx context.Context, orgID string) ([]db.Team, error) {
	rows, err := s.PG.QueryContext(ctx, `
		SELECT id, org_id, name, COALESCE(description, ''), COALESCE(coach_id, ''), is_active, created_at, updated_at
		FROM teams
		WHERE org_id = $1 AND is_active = true
		ORDER BY name
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]db.Team, 0)
	for rows.Next() {
		var t db.Team
		if err := rows.Scan(&t.ID, &t.OrgID, &t.Name, &t.Description, &t.CoachID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// DeleteTeam removes a team, scoped to the organization so a leaked id
// from another tenant cannot match.
func (s *TeamService) DeleteTeam(ctx context.Context, orgID, teamID string) error {
	result, err := s.PG.ExecContext(ctx, `
		DELETE FROM teams WHERE id = $1 AND org_id = $2
	`, teamID, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrTeamNotFound
	}
	return nil
}
