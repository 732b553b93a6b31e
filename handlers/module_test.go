package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/rosterly/rosterly/authz"
	"github.com/rosterly/rosterly/modules"
)

// moduleTestRouter mounts the handler behind a stub that injects an
// already-granted org context, standing in for the authz middleware.
func moduleTestRouter(svc *modules.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grant := func(c *gin.Context) {
		c.Set(authz.CtxOrgID, "org-1")
		c.Set(authz.CtxOrgRole, string(authz.RoleAdmin))
		c.Next()
	}
	h := NewModuleHandler(svc)
	r.POST("/modules/:key/enable", grant, h.EnableModule)
	r.POST("/modules/:key/disable", grant, h.DisableModule)
	r.GET("/modules/:key/requirements", grant, h.CheckModule)
	return r
}

func TestEnableModule_PrerequisiteConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	// classes requires teachers, which is not enabled.
	mock.ExpectQuery("SELECT enabled FROM tenant_modules").
		WithArgs("org-1", modules.KeyTeachers).
		WillReturnRows(sqlmock.NewRows([]string{"enabled"}))

	r := moduleTestRouter(modules.NewService(db))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/modules/classes/enable", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
	}

	var body struct {
		Missing []string `json:"missing"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Missing) != 1 || body.Missing[0] != "teachers" {
		t.Errorf("missing = %v, want [teachers]", body.Missing)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected writes: %v", err)
	}
}

func TestEnableModule_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT enabled FROM tenant_modules").
		WithArgs("org-1", modules.KeyTeachers).
		WillReturnRows(sqlmock.NewRows([]string{"enabled"}).AddRow(true))
	mock.ExpectExec("INSERT INTO tenant_modules").
		WithArgs(sqlmock.AnyArg(), "org-1", modules.KeyClasses, `{"max_size":20}`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := moduleTestRouter(modules.NewService(db))
	w := httptest.NewRecorder()
	payload := bytes.NewBufferString(`{"settings":"{\"max_size\":20}"}`)
	req := httptest.NewRequest(http.MethodPost, "/modules/classes/enable", payload)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDisableModule_Core(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	r := moduleTestRouter(modules.NewService(db))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/modules/teams/disable", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestCheckModule_Unknown(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	r := moduleTestRouter(modules.NewService(db))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/modules/billing/requirements", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}
