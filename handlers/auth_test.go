package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/rosterly/rosterly/services"
)

func authTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}

	gin.SetMode(gin.TestMode)
	users := services.NewUserService(db, nil)
	auth := services.NewAuthService(db, nil, users)
	h := NewAuthHandler(auth)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	return r, mock, func() { db.Close() }
}

var userCols = []string{"id", "provider", "provider_id", "email", "name", "password_hash", "default_org_id", "is_active", "created_at", "updated_at"}

func TestSignup_DuplicateEmail(t *testing.T) {
	r, mock, closeDB := authTestRouter(t)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery("SELECT id, provider, provider_id").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-1", "local", "alice@example.com", "alice@example.com", "Alice", "hash", nil, true, now, now))

	w := httptest.NewRecorder()
	payload := bytes.NewBufferString(`{"email":"alice@example.com","password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", payload)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestSignup_DatabaseFailure(t *testing.T) {
	r, mock, closeDB := authTestRouter(t)
	defer closeDB()

	// No existing account, but the insert fails; that is an internal
	// error, not a conflict.
	mock.ExpectQuery("SELECT id, provider, provider_id").
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("connection reset"))

	w := httptest.NewRecorder()
	payload := bytes.NewBufferString(`{"email":"bob@example.com","password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", payload)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500: %s", w.Code, w.Body.String())
	}
}
