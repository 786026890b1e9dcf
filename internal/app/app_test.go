package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	api "github.com/mind-engage/studyhub/internal/api/http"
	"github.com/mind-engage/studyhub/internal/config"
	"github.com/mind-engage/studyhub/internal/logger"
)

func TestNewBootstrapsAdmin(t *testing.T) {
	dir := t.TempDir()
	hash, _ := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.MinCost)
	cfg := config.Config{
		Mode:              config.ModeOffline,
		DBDriver:          "sqlite",
		DBDSN:             "file:" + filepath.Join(dir, "app.db"),
		BlobBasePath:      filepath.Join(dir, "blobs"),
		DataRoot:          filepath.Join(dir, "bank"),
		AuthSecret:        "k",
		AdminUser:         "root",
		AdminPassHash:     string(hash),
		UploadMaxBytes:    1 << 20,
		TokensPerApproval: 50,
		LeaderboardLimit:  10,
	}
	a, err := New(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	acct, err := a.Deps.Accounts.Authenticate(context.Background(), "root", "adminpass")
	if err != nil || acct.Role != "admin" {
		t.Fatalf("admin = %+v, %v", acct, err)
	}
	if !a.Deps.AllowClaimFallback {
		t.Error("offline mode should allow claim fallback")
	}

	rec := httptest.NewRecorder()
	api.NewRouter(a.Deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := config.Config{DBDriver: "mongo"}
	if _, err := New(context.Background(), cfg, logger.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
