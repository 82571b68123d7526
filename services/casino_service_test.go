package services

import (
	"context"
	"testing"

	"bonus-listing-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCasinoCRUD(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, "POST", "/api/admin/casinos", map[string]any{
		"name":           "Lucky Star Casino",
		"website":        "https://lucky.example",
		"paymentMethods": []string{"Visa", "Skrill"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	id := body["id"].(string)
	assert.Equal(t, "lucky-star-casino", body["slug"])

	resp, body = api.do(t, "POST", "/api/admin/casinos", map[string]any{"name": "X", "slug": "Not A Slug"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "slug")

	resp, _ = api.do(t, "PUT", "/api/admin/casinos", map[string]any{"id": id, "name": "Lucky Moon"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	c, err := api.store.GetCasino(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "lucky-moon", c.Slug, "slug follows a renamed casino")
	assert.Equal(t, []string{"Visa", "Skrill"}, c.PaymentMethods)

	resp, _ = api.do(t, "PUT", "/api/admin/casinos", map[string]any{"id": "nope", "name": "x"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = api.do(t, "GET", "/api/admin/casinos?id="+id, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lucky Moon", body["casino"].(map[string]any)["name"])
}

func TestListCasinosSortedByName(t *testing.T) {
	api := newTestAPI(t)
	addCasino(t, api.store, models.Casino{ID: "1", Name: "zulu"})
	addCasino(t, api.store, models.Casino{ID: "2", Name: "Alpha", LogoURL: "https://drive.google.com/file/d/abc/view"})

	resp, body := api.do(t, "GET", "/api/admin/casinos", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := listOf(t, body, "casinos")
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0]["name"])
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=abc", list[0]["logo"])
	assert.Equal(t, "zulu", list[1]["slug"], "derived slug is filled in")
}

func TestCasinoPage(t *testing.T) {
	api := newTestAPI(t)
	addCasino(t, api.store, models.Casino{ID: "c1", Name: "Acme", Slug: "acme"})
	addBonus(t, api.store, models.Bonus{ID: "linked", Title: "Linked", CasinoID: "c1"})
	addBonus(t, api.store, models.Bonus{ID: "named", Title: "Named", CasinoLink: models.LegacyCasinoName("ACME")})
	addBonus(t, api.store, models.Bonus{ID: "other", Title: "Other", Brand: "Beta"})

	resp, body := api.do(t, "GET", "/api/casinos/acme", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme", body["name"])
	got := map[string]bool{}
	for _, b := range listOf(t, body, "bonuses") {
		got[b["id"].(string)] = true
	}
	assert.Equal(t, map[string]bool{"linked": true, "named": true}, got)

	t.Run("brand without casino record", func(t *testing.T) {
		resp, body := api.do(t, "GET", "/api/casinos/beta", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Nil(t, body["casino"])
		assert.Equal(t, "Beta", body["name"])
		assert.Len(t, listOf(t, body, "bonuses"), 1)
	})

	t.Run("unknown slug", func(t *testing.T) {
		resp, _ := api.do(t, "GET", "/api/casinos/nothing-here", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestMigrateEndpoint(t *testing.T) {
	api := newTestAPI(t)
	addBonus(t, api.store, models.Bonus{ID: "1", Brand: "Acme"})
	addBonus(t, api.store, models.Bonus{ID: "2", Brand: "acme"})
	addBonus(t, api.store, models.Bonus{ID: "3", Brand: "Beta"})

	resp, body := api.do(t, "POST", "/api/admin/casinos/migrate", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Migration completed", body["message"])
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 2, stats["casinosCreated"])
	assert.EqualValues(t, 3, stats["bonusesUpdated"])
	assert.EqualValues(t, 0, stats["errors"])

	resp, body = api.do(t, "GET", "/api/casinos/acme", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, listOf(t, body, "bonuses"), 2)
}
