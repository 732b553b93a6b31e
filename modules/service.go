package modules

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// TenantModule is the per-organization enablement record for a module.
// Absence of a row means disabled - a module never defaults to enabled.
type TenantModule struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	ModuleKey Key       `json:"module_key"`
	Enabled   bool      `json:"enabled"`
	Settings  string    `json:"settings,omitempty"` // JSON string
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequirementCheck reports whether a module's direct prerequisites are
// enabled. Missing always carries the full list so an operator can
// remediate in one step.
type RequirementCheck struct {
	Satisfied bool  `json:"satisfied"`
	Missing   []Key `json:"missing"`
}

// PrerequisiteError rejects an enable whose prerequisites are unmet.
type PrerequisiteError struct {
	Module  Key
	Missing []Key
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("module %s has unmet prerequisites: %v", e.Module, e.Missing)
}

// Service answers enablement questions and toggles modules for an
// organization. It is a client of the authorization middleware: the HTTP
// routes that reach Enable/Disable are gated there, not here.
type Service struct {
	db *sql.DB
}

// NewService creates a module service over the given connection.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// IsEnabled reports whether a module is enabled for the organization.
// No row means disabled; core modules are always enabled.
func (s *Service) IsEnabled(ctx context.Context, orgID string, key Key) bool {
	mod, ok := Catalog[key]
	if !ok {
		return false
	}
	if mod.IsCore {
		return true
	}

	var enabled bool
	err := s.db.QueryRowContext(ctx, `
		SELECT enabled FROM tenant_modules WHERE org_id = $1 AND module_key = $2
	`, orgID, key).Scan(&enabled)

	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Error checking module state: %v", err)
		}
		return false
	}
	return enabled
}

// GetEnabled returns the enablement rows for every module switched on
// for the organization. Core modules have no row and are not listed.
func (s *Service) GetEnabled(ctx context.Context, orgID string) ([]TenantModule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, module_key, enabled, settings, created_at, updated_at
		FROM tenant_modules
		WHERE org_id = $1 AND enabled = true
		ORDER BY module_key
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled modules: %w", err)
	}
	defer rows.Close()

	mods := make([]TenantModule, 0)
	for rows.Next() {
		var tm TenantModule
		var settings sql.NullString
		if err := rows.Scan(&tm.ID, &tm.OrgID, &tm.ModuleKey, &tm.Enabled, &settings, &tm.CreatedAt, &tm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant module: %w", err)
		}
		tm.Settings = settings.String
		mods = append(mods, tm)
	}
	return mods, rows.Err()
}

// CheckRequired checks the module's direct prerequisites against the
// organization's enabled set. It never short-circuits: Missing is the
// complete remediation list. Zero requirements are trivially satisfied.
func (s *Service) CheckRequired(ctx context.Context, orgID string, key Key) (RequirementCheck, error) {
	mod, err := Lookup(key)
	if err != nil {
		return RequirementCheck{}, err
	}

	check := RequirementCheck{Satisfied: true, Missing: []Key{}}
	for _, req := range mod.Requires {
		if !s.IsEnabled(ctx, orgID, req) {
			check.Satisfied = false
			check.Missing = append(check.Missing, req)
		}
	}
	return check, nil
}

// Enable switches a module on for the organization. It rejects with
// *PrerequisiteError when prerequisites are unmet - it never auto-enables
// them, and no row is written on rejection.
func (s *Service) Enable(ctx context.Context, orgID string, key Key, settings string) error {
	if _, err := Lookup(key); err != nil {
		return err
	}

	check, err := s.CheckRequired(ctx, orgID, key)
	if err != nil {
		return err
	}
	if !check.Satisfied {
		return &PrerequisiteError{Module: key, Missing: check.Missing}
	}

	now := time.Now()
	var settingsArg interface{}
	if settings != "" {
		settingsArg = settings
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tenant_modules (id, org_id, module_key, enabled, settings, created_at, updated_at)
		VALUES ($1, $2, $3, true, $4, $5, $6)
		ON CONFLICT (org_id, module_key) DO UPDATE SET enabled = true, settings = EXCLUDED.settings, updated_at = EXCLUDED.updated_at
	`, uuid.New().String(), orgID, key, settingsArg, now, now)

	if err != nil {
		return fmt.Errorf("failed to enable module: %w", err)
	}
	return nil
}

// Disable switches a module off. Core modules cannot be disabled.
func (s *Service) Disable(ctx context.Context, orgID string, key Key) error {
	mod, err := Lookup(key)
	if err != nil {
		return err
	}
	if mod.IsCore {
		return fmt.Errorf("%w: %s", ErrCoreModule, key)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tenant_modules SET enabled = false, updated_at = $3
		WHERE org_id = $1 AND module_key = $2
	`, orgID, key, time.Now())

	if err != nil {
		return fmt.Errorf("failed to disable module: %w", err)
	}
	return nil
}

// UpdateSettings replaces the module's settings blob without touching
// its enablement state.
func (s *Service) UpdateSettings(ctx context.Context, orgID string, key Key, settings string) error {
	if _, err := Lookup(key); err != nil {
		return err
	}

	var settingsArg interface{}
	if settings != "" {
		settingsArg = settings
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE tenant_modules SET settings = $3, updated_at = $4
		WHERE org_id = $1 AND module_key = $2
	`, orgID, key, settingsArg, time.Now())

	if err != nil {
		return fmt.Errorf("failed to update module settings: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotConfigured, key)
	}
	return nil
}
