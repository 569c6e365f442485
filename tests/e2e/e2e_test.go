//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"almapos/internal/config"
	"almapos/internal/infra"
	"almapos/internal/middleware"
	"almapos/internal/router"
	"almapos/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const testSecret = "test-secret-key"

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// assertMonto compares a serialized decimal against the expected amount
// without depending on how many trailing zeros survived the round-trip.
func assertMonto(t *testing.T, expected, got string) {
	t.Helper()
	want, err := decimal.NewFromString(expected)
	require.NoError(t, err)
	have, err := decimal.NewFromString(got)
	require.NoError(t, err)
	assert.True(t, want.Equal(have), "want %s, got %s", expected, got)
}

func issueToken(t *testing.T, comercioID uuid.UUID, rol string) string {
	t.Helper()
	pv := 1
	claims := middleware.JWTClaims{
		ComercioID:   comercioID.String(),
		UserID:       uuid.NewString(),
		Rol:          rol,
		PuntoDeVenta: &pv,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// ── Setup ─────────────────────────────────────────────────────────────────────

type testEnv struct {
	server     *httptest.Server
	token      string // administrador JWT
	comercioID uuid.UUID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("almapos_test"),
		tcPostgres.WithUsername("almapos"),
		tcPostgres.WithPassword("almapos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:           8000,
		Env:            "test",
		JWTSecret:      testSecret,
		DatabaseURL:    pgURL,
		RedisURL:       rdURL,
		WorkerPoolSize: 1,
		PDFStoragePath: t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	dispatcher := worker.NewDispatcher(rdb)
	srv := httptest.NewServer(router.New(cfg, db, rdb, dispatcher))
	t.Cleanup(srv.Close)

	comercioID := uuid.New()
	return &testEnv{
		server:     srv,
		token:      issueToken(t, comercioID, "administrador"),
		comercioID: comercioID,
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCicloCompletoDeCaja(t *testing.T) {
	env := setupTestEnv(t)
	fecha := "2026-08-29"

	// 1. Open the session
	resp := do(t, env.server, "POST", "/v1/caja/sesion",
		jsonBody(t, map[string]any{"fecha": fecha}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sesion struct {
		ID     string `json:"id"`
		Estado string `json:"estado"`
	}
	decodeJSON(t, resp, &sesion)
	assert.Equal(t, "abierta", sesion.Estado)

	// Idempotent reopen returns the same session
	resp = do(t, env.server, "POST", "/v1/caja/sesion",
		jsonBody(t, map[string]any{"fecha": fecha}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var misma struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &misma)
	assert.Equal(t, sesion.ID, misma.ID)

	// 2. Sell
	resp = do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"fecha":          fecha,
		"punto_de_venta": 1,
		"tipo":           "ticket",
		"metodo_pago":    "efectivo",
		"items": []map[string]any{
			{"nombre": "Linea libre", "cantidad": 2, "precio_unitario": "150.00"},
		},
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta struct {
		ID             string `json:"id"`
		Numero         int64  `json:"numero"`
		NumeroCompleto string `json:"numero_completo"`
		Monto          string `json:"monto"`
	}
	decodeJSON(t, resp, &venta)
	assert.Equal(t, int64(1), venta.Numero)
	assert.Equal(t, "0001-00000001", venta.NumeroCompleto)

	// 3. Register a gasto
	resp = do(t, env.server, "POST", "/v1/gastos", jsonBody(t, map[string]any{
		"fecha":       fecha,
		"descripcion": "Hielo para la heladera",
		"monto":       "50.00",
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// 4. Resumen reflects both
	resp = do(t, env.server, "GET", "/v1/caja/resumen?fecha="+fecha, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var resumen struct {
		TotalVentas string `json:"total_ventas"`
		TotalGastos string `json:"total_gastos"`
		Teorico     string `json:"teorico"`
	}
	decodeJSON(t, resp, &resumen)
	assertMonto(t, "300.00", resumen.TotalVentas)
	assertMonto(t, "50.00", resumen.TotalGastos)
	assertMonto(t, "250.00", resumen.Teorico)

	// 5. Close with a declared count that leaves a faltante of 10
	resp = do(t, env.server, "POST", "/v1/caja/cerrar", jsonBody(t, map[string]any{
		"fecha":              fecha,
		"declarado_efectivo": "240.00",
		"declarado_digital":  "0",
	}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cierre struct {
		Diferencia string `json:"diferencia"`
	}
	decodeJSON(t, resp, &cierre)
	assertMonto(t, "-10.00", cierre.Diferencia)

	// 6. Selling on a closed session fails with 409
	resp = do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"fecha":          fecha,
		"punto_de_venta": 1,
		"tipo":           "ticket",
		"metodo_pago":    "efectivo",
		"items": []map[string]any{
			{"nombre": "Linea libre", "cantidad": 1, "precio_unitario": "10.00"},
		},
	}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// 7. Next day opens with the declared balances
	resp = do(t, env.server, "POST", "/v1/caja/dia-siguiente",
		jsonBody(t, map[string]any{"fecha": fecha}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var siguiente struct {
		Fecha           string `json:"fecha"`
		InicialEfectivo string `json:"inicial_efectivo"`
	}
	decodeJSON(t, resp, &siguiente)
	assert.Equal(t, "2026-08-30", siguiente.Fecha)
	assertMonto(t, "240.00", siguiente.InicialEfectivo)
}

func TestAnulacionRestauraStockE2E(t *testing.T) {
	env := setupTestEnv(t)
	fecha := "2026-08-29"

	resp := do(t, env.server, "POST", "/v1/caja/sesion",
		jsonBody(t, map[string]any{"fecha": fecha}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"fecha":          fecha,
		"punto_de_venta": 1,
		"tipo":           "ticket",
		"metodo_pago":    "debito",
		"items": []map[string]any{
			{"nombre": "Linea libre", "cantidad": 1, "precio_unitario": "100.00"},
		},
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &venta)

	// Anular
	resp = do(t, env.server, "DELETE", "/v1/ventas/"+venta.ID, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var anulada struct {
		Estado string `json:"estado"`
	}
	decodeJSON(t, resp, &anulada)
	assert.Equal(t, "anulada", anulada.Estado)

	// Double anulación → 409
	resp = do(t, env.server, "DELETE", "/v1/ventas/"+venta.ID, nil, env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAislamientoEntreComercios(t *testing.T) {
	env := setupTestEnv(t)
	fecha := "2026-08-29"

	resp := do(t, env.server, "POST", "/v1/caja/sesion",
		jsonBody(t, map[string]any{"fecha": fecha}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"fecha":          fecha,
		"punto_de_venta": 1,
		"tipo":           "ticket",
		"metodo_pago":    "efectivo",
		"items": []map[string]any{
			{"nombre": "Linea libre", "cantidad": 1, "precio_unitario": "10.00"},
		},
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &venta)

	// Another comercio cannot cancel it
	otroToken := issueToken(t, uuid.New(), "administrador")
	resp = do(t, env.server, "DELETE", "/v1/ventas/"+venta.ID, nil, otroToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestRolesInsuficientes(t *testing.T) {
	env := setupTestEnv(t)
	cajeroToken := issueToken(t, env.comercioID, "cajero")

	resp := do(t, env.server, "POST", "/v1/caja/cerrar", jsonBody(t, map[string]any{
		"fecha":              "2026-08-29",
		"declarado_efectivo": "0",
		"declarado_digital":  "0",
	}), cajeroToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
