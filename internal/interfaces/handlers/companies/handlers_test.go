package companies

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	companysvc "github.com/amanuelrf/reliance-mobile/internal/application/companies"
	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCompanyHandlers(t *testing.T) (*fiber.App, uuid.UUID) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	h := &Handlers{Service: &companysvc.Service{DB: db}}
	owner := uuid.New()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": owner.String(), "role": "admin"})
		return c.Next()
	})
	app.Get("/companies/autocomplete", h.Autocomplete)
	app.Post("/companies", h.Create)
	app.Get("/companies/:id", h.Get)
	app.Delete("/companies/:id", h.Delete)
	return app, owner
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func createCompany(t *testing.T, app *fiber.App, body map[string]interface{}) string {
	t.Helper()
	code, out := do(t, app, "POST", "/companies", body)
	require.Equal(t, 201, code, out)
	return out["data"].(map[string]interface{})["id"].(string)
}

func TestAutocomplete_RanksByTier(t *testing.T) {
	app, _ := setupCompanyHandlers(t)
	createCompany(t, app, map[string]interface{}{"name": "Prefix Hauling", "mc_number": 1230})
	createCompany(t, app, map[string]interface{}{"name": "Exact Freight", "mc_number": 123})
	createCompany(t, app, map[string]interface{}{"name": "Aardvark 123 Logistics"})

	code, out := do(t, app, "GET", "/companies/autocomplete?query=MC-123", nil)
	require.Equal(t, 200, code)
	rows := out["data"].([]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "Exact Freight", rows[0].(map[string]interface{})["name"])
	assert.Equal(t, "Prefix Hauling", rows[1].(map[string]interface{})["name"])
	assert.Equal(t, float64(2), out["metadata"].(map[string]interface{})["count"])

	code, out = do(t, app, "GET", "/companies/autocomplete?query=123&limit=1", nil)
	require.Equal(t, 200, code)
	rows = out["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Exact Freight", rows[0].(map[string]interface{})["name"])

	code, out = do(t, app, "GET", "/companies/autocomplete?query=aardvark", nil)
	require.Equal(t, 200, code)
	assert.Len(t, out["data"], 1)
}

func TestAutocomplete_EmptyQueryAndLimits(t *testing.T) {
	app, _ := setupCompanyHandlers(t)
	createCompany(t, app, map[string]interface{}{"name": "Acme", "mc_number": 9})

	code, out := do(t, app, "GET", "/companies/autocomplete", nil)
	require.Equal(t, 200, code)
	assert.Len(t, out["data"], 0)

	for _, limit := range []string{"0", "101", "ten"} {
		code, _ = do(t, app, "GET", "/companies/autocomplete?query=acme&limit="+limit, nil)
		assert.Equal(t, 400, code, limit)
	}
}

func TestCreateGetDelete(t *testing.T) {
	app, owner := setupCompanyHandlers(t)
	id := createCompany(t, app, map[string]interface{}{"name": " Acme ", "legal_name": "Acme LLC", "mc_number": 9, "dot_number": 90})

	code, out := do(t, app, "GET", "/companies/"+id, nil)
	require.Equal(t, 200, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "Acme", data["name"])
	assert.Equal(t, owner.String(), data["owner_id"])
	assert.Equal(t, float64(90), data["dot_number"])

	code, _ = do(t, app, "POST", "/companies", map[string]interface{}{"name": "Other", "mc_number": 9})
	assert.Equal(t, 409, code)
	code, _ = do(t, app, "POST", "/companies", map[string]interface{}{"name": "  "})
	assert.Equal(t, 400, code)
	code, _ = do(t, app, "POST", "/companies", map[string]interface{}{"name": "Neg", "dot_number": -1})
	assert.Equal(t, 400, code)

	code, _ = do(t, app, "DELETE", "/companies/"+id, nil)
	assert.Equal(t, 200, code)
	code, _ = do(t, app, "GET", "/companies/"+id, nil)
	assert.Equal(t, 404, code)
	code, _ = do(t, app, "DELETE", "/companies/"+id, nil)
	assert.Equal(t, 404, code)
	code, _ = do(t, app, "GET", "/companies/not-a-uuid", nil)
	assert.Equal(t, 400, code)

	// The MC number is free again once the holder is deleted.
	createCompany(t, app, map[string]interface{}{"name": "Acme Again", "mc_number": 9})
}
