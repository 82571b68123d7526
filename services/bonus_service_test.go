package services

import (
	"context"
	"testing"

	"bonus-listing-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBonusAppendsAtEnd(t *testing.T) {
	api := newTestAPI(t)
	addBonus(t, api.store, models.Bonus{ID: "old", Title: "Old", OrderKey: intPtr(4)})

	resp, body := api.do(t, "POST", "/api/admin/bonuses", map[string]any{
		"title":    "Welcome",
		"link":     "acme.com",
		"casino":   "Acme",
		"tags":     "vip, new",
		"casinoId": "",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	id := body["id"].(string)

	b, err := api.store.GetBonus(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, b.OrderKey)
	assert.Equal(t, 5, *b.OrderKey)
	assert.Equal(t, "vip, new", b.Tags)
	assert.Equal(t, DefaultTerms, b.TermsText)
	name, ok := b.CasinoLink.LegacyName()
	assert.True(t, ok)
	assert.Equal(t, "Acme", name)
}

func TestCreateBonusValidation(t *testing.T) {
	api := newTestAPI(t)
	resp, body := api.do(t, "POST", "/api/admin/bonuses", map[string]any{"title": "x", "rating": 9})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "link")
	assert.Contains(t, fields, "rating")
}

func TestUpdateBonusLinksByID(t *testing.T) {
	api := newTestAPI(t)
	addBonus(t, api.store, models.Bonus{ID: "b", Title: "T", CasinoLink: models.LegacyCasinoName("Old")})

	resp, _ := api.do(t, "PUT", "/api/admin/bonuses", map[string]any{"id": "b", "casinoId": "c9"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	b, _ := api.store.GetBonus(context.Background(), "b")
	assert.Equal(t, "c9", b.CasinoID)
	ref, ok := b.CasinoLink.RefID()
	assert.True(t, ok)
	assert.Equal(t, "c9", ref)
	assert.Equal(t, "T", b.Title)

	resp, _ = api.do(t, "PUT", "/api/admin/bonuses", map[string]any{"id": "missing", "title": "x"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteBonusResequences(t *testing.T) {
	api := newTestAPI(t)
	addBonus(t, api.store, models.Bonus{ID: "a", Brand: "A", OrderKey: intPtr(0)})
	addBonus(t, api.store, models.Bonus{ID: "b", Brand: "B", OrderKey: intPtr(1)})
	addBonus(t, api.store, models.Bonus{ID: "c", Brand: "C", OrderKey: intPtr(2)})

	resp, body := api.do(t, "DELETE", "/api/admin/bonuses?id=b", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "resequenced")
	assert.Equal(t, 1, *orderOf(t, api.store, "c"))

	resp, _ = api.do(t, "DELETE", "/api/admin/bonuses", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, _ = api.do(t, "DELETE", "/api/admin/bonuses?id=b", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReorderBonuses(t *testing.T) {
	api := newTestAPI(t)
	addBonus(t, api.store, models.Bonus{ID: "a", Brand: "A", OrderKey: intPtr(3)})
	addBonus(t, api.store, models.Bonus{ID: "b", Brand: "B", OrderKey: intPtr(7)})

	t.Run("swap", func(t *testing.T) {
		resp, _ := api.do(t, "POST", "/api/admin/bonuses/reorder", map[string]any{"bonusId1": "a", "bonusId2": "b"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, 7, *orderOf(t, api.store, "a"))
		assert.Equal(t, 3, *orderOf(t, api.store, "b"))
	})

	t.Run("explicit orders", func(t *testing.T) {
		resp, _ := api.do(t, "POST", "/api/admin/bonuses/reorder", map[string]any{
			"bonusId1": "a", "bonusId2": "b", "order1": 1, "order2": 0,
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, *orderOf(t, api.store, "a"))
		assert.Equal(t, 0, *orderOf(t, api.store, "b"))
	})

	t.Run("one order only is rejected", func(t *testing.T) {
		resp, _ := api.do(t, "POST", "/api/admin/bonuses/reorder", map[string]any{
			"bonusId1": "a", "bonusId2": "b", "order1": 1,
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("reorder all", func(t *testing.T) {
		resp, body := api.do(t, "POST", "/api/admin/bonuses/reorder", map[string]any{"reorderAll": true})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Reordered 2 bonuses sequentially", body["message"])
	})
}

func TestPublicBonusesDegrade(t *testing.T) {
	api := newTestAPI(t)
	addBonus(t, api.store, models.Bonus{ID: "a", Title: "A"})

	resp, body := api.do(t, "GET", "/api/bonuses", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, listOf(t, body, "bonuses"), 1)

	api.store.failListBonuses = true
	resp, body = api.do(t, "GET", "/api/bonuses", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, listOf(t, body, "bonuses"))

	resp, _ = api.do(t, "GET", "/api/admin/bonuses", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
