package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/amanuelrf/reliance-mobile/internal/config"
	"github.com/amanuelrf/reliance-mobile/internal/constants"
	"github.com/amanuelrf/reliance-mobile/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) (*fiber.App, func(sid, role string)) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	app, db, rdb, err := CreateApp(&config.Config{
		Env:            "test",
		DatabaseURL:    "sqlite::memory:",
		RedisURL:       "redis://" + mr.Addr(),
		HealthAdminKey: "k",
	})
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() { rdb.Close() })

	login := func(sid, role string) {
		require.NoError(t, middleware.StoreSession(context.Background(), rdb, sid, middleware.SessionUser{UserID: uuid.NewString(), Role: role}))
	}
	return app, login
}

func call(t *testing.T, app *fiber.App, method, path, sid string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.Header.Set("Authorization", "Bearer "+sid)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func TestCreateApp_CreditFlowWithoutBureau(t *testing.T) {
	app, login := setupApp(t)
	login("mgr", constants.Manager)
	login("viewer", constants.Viewer)

	code, _ := call(t, app, "POST", "/api/v1/credit/check", "", map[string]interface{}{"mc_number": 7, "requested_amount": 100})
	assert.Equal(t, 401, code)
	code, _ = call(t, app, "POST", "/api/v1/credit/check", "viewer", map[string]interface{}{"mc_number": 7, "requested_amount": 100})
	assert.Equal(t, 403, code)

	code, body := call(t, app, "POST", "/api/v1/credit/check", "mgr", map[string]interface{}{"mc_number": 7, "requested_amount": 100})
	require.Equal(t, 201, code, string(body))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	check := out["data"].(map[string]interface{})["check"].(map[string]interface{})
	assert.Equal(t, "INSUFFICIENT_DATA", check["status"])
	assert.Equal(t, float64(0), check["approved_amount"])
	assert.Equal(t, true, out["metadata"].(map[string]interface{})["degraded"])

	code, _ = call(t, app, "GET", "/api/v1/credit/checks/latest?mc_number=7", "mgr", nil)
	assert.Equal(t, 200, code)
	// Sessions are per user; the viewer owns nothing yet.
	code, _ = call(t, app, "GET", "/api/v1/credit/checks/latest?mc_number=7", "viewer", nil)
	assert.Equal(t, 404, code)

	code, body = call(t, app, "GET", "/metrics", "", nil)
	require.Equal(t, 200, code)
	assert.Contains(t, string(body), `reliance_credit_decisions_total{source="FactorsNetwork",status="INSUFFICIENT_DATA"} 1`)
}

func TestCreateApp_CompanyPermissions(t *testing.T) {
	app, login := setupApp(t)
	login("admin", constants.Admin)
	login("mgr", constants.Manager)

	code, _ := call(t, app, "POST", "/api/v1/companies", "mgr", map[string]interface{}{"name": "Acme", "mc_number": 9})
	assert.Equal(t, 403, code)
	code, body := call(t, app, "POST", "/api/v1/companies", "admin", map[string]interface{}{"name": "Acme", "mc_number": 9})
	require.Equal(t, 201, code, string(body))
	code, _ = call(t, app, "GET", "/api/v1/companies/autocomplete?query=9", "admin", nil)
	assert.Equal(t, 200, code)
}

func TestCreateApp_HealthRoutes(t *testing.T) {
	app, _ := setupApp(t)

	code, body := call(t, app, "GET", "/health/json", "", nil)
	require.Equal(t, 200, code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	deps := out["dependencies"].(map[string]interface{})
	assert.Equal(t, "connected", deps["database"].(map[string]interface{})["status"])
	assert.Equal(t, "connected", deps["redis"].(map[string]interface{})["status"])
	assert.Equal(t, "not_configured", deps["bureau"].(map[string]interface{})["status"])
	assert.Equal(t, "degraded", out["status"])

	code, _ = call(t, app, "GET", "/", "", nil)
	assert.Equal(t, 200, code)
	code, _ = call(t, app, "GET", "/reset?key=k", "", nil)
	assert.Equal(t, 200, code)
}

func TestCreateApp_WithoutDatabase(t *testing.T) {
	app, db, rdb, err := CreateApp(&config.Config{Env: "test"})
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.Nil(t, rdb)

	code, _ := call(t, app, "GET", "/api/v1/credit/score", "", nil)
	assert.Equal(t, 404, code)
	code, _ = call(t, app, "GET", "/health/errors", "", nil)
	assert.Equal(t, 200, code)
}
