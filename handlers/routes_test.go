package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bonus-listing-system/services"
	"bonus-listing-system/store"
	"bonus-listing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()
	s := store.NewMemoryStore()
	images := utils.ImageNormalizer{}
	agg := services.NewAggregator(s, images, 2)
	seq := services.NewSequencer(s, agg, 2, services.AppendAfterKeyed)
	auth := services.NewAuthService("letmein", []byte("secret"), time.Hour, false)

	uploader, err := utils.NewLocalUploader(t.TempDir(), "/uploads")
	require.NoError(t, err)

	app := fiber.New()
	SetupHealthRoutes(app, services.NewHealthService(s))
	api := app.Group("/api")
	admin := SetupAdminRoutes(api, auth, services.NewUploadService(uploader))
	SetupBonusRoutes(api, admin, services.NewBonusService(s, agg, seq))
	SetupCasinoRoutes(api, admin, services.NewCasinoService(s, agg, services.NewMigrator(s, images, 2), images))
	SetupReviewRoutes(api, admin, services.NewReviewService(s))
	return app, auth
}

func TestAdminRoutesRequireSession(t *testing.T) {
	app, auth := newApp(t)
	token, _, err := auth.IssueToken()
	require.NoError(t, err)

	gated := []struct{ method, path string }{
		{"GET", "/api/admin/bonuses"},
		{"POST", "/api/admin/bonuses/reorder"},
		{"GET", "/api/admin/casinos"},
		{"POST", "/api/admin/casinos/migrate"},
		{"GET", "/api/admin/reviews"},
		{"POST", "/api/admin/uploads"},
	}
	for _, r := range gated {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(r.method, r.path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}

	req := httptest.NewRequest("GET", "/api/admin/bonuses", nil)
	req.Header.Set("Cookie", services.AdminCookie+"="+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPublicAndLoginRoutesAreOpen(t *testing.T) {
	app, _ := newApp(t)

	for _, path := range []string{"/api/bonuses", "/healthz", "/readyz"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}

	req := httptest.NewRequest("POST", "/api/admin/auth", strings.NewReader(`{"code":"letmein"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
