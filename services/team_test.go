package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTeamService_CreateTeam(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	svc := NewTeamService(db)

	mock.ExpectExec("INSERT INTO teams").
		WithArgs(sqlmock.AnyArg(), "org-1", "U12", "", nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	team, err := svc.CreateTeam(context.Background(), "org-1", CreateTeamInput{Name: "U12"})
	if err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}
	if team.ID == "" {
		t.Error("CreateTeam() did not assign an id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestTeamService_DeleteTeam(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	svc := NewTeamService(db)
	ctx := context.Background()

	t.Run("deletes within org scope", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM teams").
			WithArgs("team-1", "org-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := svc.DeleteTeam(ctx, "org-1", "team-1"); err != nil {
			t.Errorf("DeleteTeam() error = %v", err)
		}
	})

	t.Run("missing team is a sentinel", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM teams").
			WithArgs("team-9", "org-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := svc.DeleteTeam(ctx, "org-1", "team-9"); !errors.Is(err, ErrTeamNotFound) {
			t.Errorf("DeleteTeam() error = %v, want ErrTeamNotFound", err)
		}
	})

	t.Run("query failure is not a not-found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM teams").
			WithArgs("team-1", "org-1").
			WillReturnError(errors.New("connection reset"))

		err := svc.DeleteTeam(ctx, "org-1", "team-1")
		if err == nil || errors.Is(err, ErrTeamNotFound) {
			t.Errorf("DeleteTeam() error = %v, want a non-sentinel failure", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
