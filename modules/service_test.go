package modules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	return NewService(db), mock, func() { db.Close() }
}

func TestService_IsEnabled(t *testing.T) {
	ctx := context.Background()

	t.Run("core module is always enabled", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		// No query expected: core short-circuits before the database.
		if !svc.IsEnabled(ctx, "org-1", KeyTeams) {
			t.Error("IsEnabled(teams) = false, want true")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected queries: %v", err)
		}
	})

	t.Run("enabled row", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyClasses).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(true))

		if !svc.IsEnabled(ctx, "org-1", KeyClasses) {
			t.Error("IsEnabled(classes) = false, want true")
		}
	})

	t.Run("no row means disabled", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyClasses).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}))

		if svc.IsEnabled(ctx, "org-1", KeyClasses) {
			t.Error("IsEnabled(classes) = true with no row, want false")
		}
	})

	t.Run("disabled row stays disabled", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyClasses).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(false))

		if svc.IsEnabled(ctx, "org-1", KeyClasses) {
			t.Error("IsEnabled(classes) = true for disabled row, want false")
		}
	})

	t.Run("query failure fails closed", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyClasses).
			WillReturnError(errors.New("connection reset"))

		if svc.IsEnabled(ctx, "org-1", KeyClasses) {
			t.Error("IsEnabled(classes) = true on query failure, want false")
		}
	})

	t.Run("unknown module is disabled", func(t *testing.T) {
		svc, _, closeDB := newMockService(t)
		defer closeDB()

		if svc.IsEnabled(ctx, "org-1", Key("billing")) {
			t.Error("IsEnabled(billing) = true, want false")
		}
	})
}

func TestService_CheckRequired(t *testing.T) {
	ctx := context.Background()

	t.Run("missing prerequisite reported", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		// classes requires teachers, which has no enablement row yet.
		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyTeachers).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}))

		check, err := svc.CheckRequired(ctx, "org-1", KeyClasses)
		if err != nil {
			t.Fatalf("CheckRequired() error = %v", err)
		}
		if check.Satisfied {
			t.Error("Satisfied = true, want false")
		}
		if len(check.Missing) != 1 || check.Missing[0] != KeyTeachers {
			t.Errorf("Missing = %v, want [teachers]", check.Missing)
		}
	})

	t.Run("satisfied after prerequisite enabled", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyTeachers).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(true))

		check, err := svc.CheckRequired(ctx, "org-1", KeyClasses)
		if err != nil {
			t.Fatalf("CheckRequired() error = %v", err)
		}
		if !check.Satisfied {
			t.Errorf("Satisfied = false, Missing = %v", check.Missing)
		}
		if len(check.Missing) != 0 {
			t.Errorf("Missing = %v, want empty", check.Missing)
		}
	})

	t.Run("no requirements are trivially satisfied", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		check, err := svc.CheckRequired(ctx, "org-1", KeyTheming)
		if err != nil {
			t.Fatalf("CheckRequired() error = %v", err)
		}
		if !check.Satisfied {
			t.Error("Satisfied = false for module without requirements")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected queries: %v", err)
		}
	})

	t.Run("unknown module", func(t *testing.T) {
		svc, _, closeDB := newMockService(t)
		defer closeDB()

		_, err := svc.CheckRequired(ctx, "org-1", Key("billing"))
		if !errors.Is(err, ErrUnknownModule) {
			t.Errorf("CheckRequired() error = %v, want ErrUnknownModule", err)
		}
	})

	t.Run("direct requirements only", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		// reports requires attendance; attendance's own chain (classes,
		// teachers) is not walked at runtime.
		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyAttendance).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(true))

		check, err := svc.CheckRequired(ctx, "org-1", KeyReports)
		if err != nil {
			t.Fatalf("CheckRequired() error = %v", err)
		}
		if !check.Satisfied {
			t.Errorf("Satisfied = false, Missing = %v", check.Missing)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("walked beyond direct requirements: %v", err)
		}
	})
}

func TestService_Enable(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects with unmet prerequisites and writes nothing", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyTeachers).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}))

		err := svc.Enable(ctx, "org-1", KeyClasses, "")
		var prereq *PrerequisiteError
		if !errors.As(err, &prereq) {
			t.Fatalf("Enable() error = %v, want *PrerequisiteError", err)
		}
		if prereq.Module != KeyClasses || len(prereq.Missing) != 1 || prereq.Missing[0] != KeyTeachers {
			t.Errorf("PrerequisiteError = %+v", prereq)
		}
		// ExpectationsWereMet proves no INSERT happened.
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected writes: %v", err)
		}
	})

	t.Run("upserts when prerequisites met", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyTeachers).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(true))
		mock.ExpectExec("INSERT INTO tenant_modules").
			WithArgs(sqlmock.AnyArg(), "org-1", KeyClasses, `{"max_size":20}`, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := svc.Enable(ctx, "org-1", KeyClasses, `{"max_size":20}`); err != nil {
			t.Fatalf("Enable() error = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})

	t.Run("empty settings stored as null", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		// Enabling with no settings must succeed; the settings column is
		// nullable and an empty blob is written as NULL.
		mock.ExpectQuery("SELECT enabled FROM tenant_modules").
			WithArgs("org-1", KeyTeachers).
			WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(true))
		mock.ExpectExec("INSERT INTO tenant_modules").
			WithArgs(sqlmock.AnyArg(), "org-1", KeyClasses, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := svc.Enable(ctx, "org-1", KeyClasses, ""); err != nil {
			t.Fatalf("Enable() error = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})

	t.Run("unknown module", func(t *testing.T) {
		svc, _, closeDB := newMockService(t)
		defer closeDB()

		if err := svc.Enable(ctx, "org-1", Key("billing"), ""); !errors.Is(err, ErrUnknownModule) {
			t.Errorf("Enable() error = %v, want ErrUnknownModule", err)
		}
	})
}

func TestService_Disable(t *testing.T) {
	ctx := context.Background()

	t.Run("disables a non-core module", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectExec("UPDATE tenant_modules SET enabled = false").
			WithArgs("org-1", KeyClasses, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := svc.Disable(ctx, "org-1", KeyClasses); err != nil {
			t.Fatalf("Disable() error = %v", err)
		}
	})

	t.Run("core module cannot be disabled", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		if err := svc.Disable(ctx, "org-1", KeyTeams); !errors.Is(err, ErrCoreModule) {
			t.Errorf("Disable() error = %v, want ErrCoreModule", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected writes: %v", err)
		}
	})
}

func TestService_UpdateSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("updates settings without touching enablement", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectExec("UPDATE tenant_modules SET settings").
			WithArgs("org-1", KeyClasses, `{"max_size":25}`, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := svc.UpdateSettings(ctx, "org-1", KeyClasses, `{"max_size":25}`); err != nil {
			t.Fatalf("UpdateSettings() error = %v", err)
		}
	})

	t.Run("no tenant record", func(t *testing.T) {
		svc, mock, closeDB := newMockService(t)
		defer closeDB()

		mock.ExpectExec("UPDATE tenant_modules SET settings").
			WithArgs("org-1", KeyClasses, `{}`, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := svc.UpdateSettings(ctx, "org-1", KeyClasses, `{}`); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("UpdateSettings() error = %v, want ErrNotConfigured", err)
		}
	})
}

func TestService_GetEnabled(t *testing.T) {
	svc, mock, closeDB := newMockService(t)
	defer closeDB()

	now := time.Now()
	cols := []string{"id", "org_id", "module_key", "enabled", "settings", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT id, org_id, module_key").
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("tm-1", "org-1", "classes", true, `{"max_size":20}`, now, now).
			AddRow("tm-2", "org-1", "teachers", true, nil, now, now))

	mods, err := svc.GetEnabled(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("GetEnabled() error = %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("got %d modules, want 2", len(mods))
	}
	if mods[0].ModuleKey != KeyClasses || mods[0].Settings != `{"max_size":20}` {
		t.Errorf("unexpected first module: %+v", mods[0])
	}
	if mods[1].Settings != "" {
		t.Errorf("null settings = %q, want empty", mods[1].Settings)
	}
}
