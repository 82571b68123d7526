package services

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bonus-listing-system/utils"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	app     *fiber.App
	store   *flakyStore
	auth    *AuthService
	reviews *ReviewService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	s := newFlakyStore()
	images := utils.ImageNormalizer{}
	agg := NewAggregator(s, images, 4)
	seq := NewSequencer(s, agg, 4, AppendAfterKeyed)

	bonuses := NewBonusService(s, agg, seq)
	casinos := NewCasinoService(s, agg, NewMigrator(s, images, 4), images)
	reviews := NewReviewService(s)
	auth := NewAuthService("letmein", []byte("secret"), time.Hour, false)

	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	app.Get("/api/bonuses", bonuses.GetPublicBonuses)
	app.Get("/api/admin/bonuses", bonuses.GetAllBonuses)
	app.Post("/api/admin/bonuses", bonuses.CreateBonus)
	app.Put("/api/admin/bonuses", bonuses.UpdateBonus)
	app.Delete("/api/admin/bonuses", bonuses.DeleteBonus)
	app.Post("/api/admin/bonuses/reorder", bonuses.ReorderBonuses)

	app.Get("/api/casinos/:slug", casinos.GetCasinoPage)
	app.Get("/api/admin/casinos", casinos.GetAllCasinos)
	app.Post("/api/admin/casinos", casinos.CreateCasino)
	app.Put("/api/admin/casinos", casinos.UpdateCasino)
	app.Post("/api/admin/casinos/migrate", casinos.MigrateCasinos)

	app.Get("/api/reviews", reviews.GetPublicReviews)
	app.Get("/api/admin/reviews", reviews.GetAllReviews)
	app.Post("/api/admin/reviews", reviews.CreateReview)
	app.Put("/api/admin/reviews", reviews.UpdateReview)
	app.Delete("/api/admin/reviews", reviews.DeleteReview)

	app.Post("/api/admin/auth", auth.Login)
	app.Post("/api/admin/logout", auth.Logout)
	app.Get("/api/admin/session", auth.Session)

	return &testAPI{app: app, store: s, auth: auth, reviews: reviews}
}

func (a *testAPI) do(t *testing.T, method, target string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

// listOf pulls a JSON array of objects out of a decoded response.
func listOf(t *testing.T, body map[string]any, key string) []map[string]any {
	t.Helper()
	raw, ok := body[key].([]any)
	require.True(t, ok, "%s is not a list: %v", key, body[key])
	out := make([]map[string]any, len(raw))
	for i, v := range raw {
		out[i] = v.(map[string]any)
	}
	return out
}
