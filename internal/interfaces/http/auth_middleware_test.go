package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/ferreteria-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "ferreteria-api-test"
	testExpMin    = 60
)

// signed token firmado con el secreto de la API de prueba; expMin negativo lo deja vencido.
func signed(t *testing.T, role string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, expMin)
	require.NoError(t, err)
	return tok
}

// Permisos por rol sobre las rutas reales del punto de venta.
func TestPermisosPorRol(t *testing.T) {
	srv := newTestServer(t)
	cajero := signed(t, entity.RoleCajero, testExpMin)
	bodeguero := signed(t, "bodeguero", testExpMin)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		code   string
	}{
		{"cajero no ajusta inventario", http.MethodPost, "/api/inventory/movements", cajero, http.StatusForbidden, "FORBIDDEN"},
		{"cajero no lista usuarios", http.MethodGet, "/api/users", cajero, http.StatusForbidden, "FORBIDDEN"},
		{"cajero no registra usuarios", http.MethodPost, "/api/auth/register", cajero, http.StatusForbidden, "FORBIDDEN"},
		{"cajero no anula ventas", http.MethodPost, "/api/sales/venta-1/void", cajero, http.StatusForbidden, "FORBIDDEN"},
		{"cajero no fija stock", http.MethodPut, "/api/products/p-1/stock", cajero, http.StatusForbidden, "FORBIDDEN"},
		{"cajero no cambia escalas de precio", http.MethodPut, "/api/products/p-1/price-rules", cajero, http.StatusForbidden, "FORBIDDEN"},
		{"cajero consulta catálogo", http.MethodGet, "/api/products", cajero, http.StatusOK, ""},
		{"cajero consulta clientes", http.MethodGet, "/api/customers", cajero, http.StatusOK, ""},
		{"rol ajeno al punto de venta", http.MethodGet, "/api/products", bodeguero, http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", http.MethodGet, "/api/products", signed(t, "", testExpMin), http.StatusUnauthorized, "MISSING_ROLE"},
		{"token vencido", http.MethodGet, "/api/products", signed(t, entity.RoleAdmin, -1), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", http.MethodGet, "/api/cash/balance", "token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"sin token", http.MethodGet, "/api/cash/balance", "", http.StatusUnauthorized, "MISSING_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.code == "" {
				resp := srv.do(t, tc.method, tc.path, tc.token, nil, nil)
				assert.Equal(t, tc.status, resp.StatusCode)
				return
			}
			var e dto.ErrorResponse
			resp := srv.do(t, tc.method, tc.path, tc.token, nil, &e)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, e.Code)
		})
	}
}

func TestTokenDeOtraInstalacion(t *testing.T) {
	srv := newTestServer(t)
	ajeno, err := pkgjwt.Generate("secreto-de-otra-ferreteria", testUserID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	var e dto.ErrorResponse
	resp := srv.do(t, http.MethodGet, "/api/sales", ajeno, nil, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", e.Code)
}

// El usuario y el rol del token llegan a los handlers: /auth/me responde con el cajero que inició sesión.
func TestMe_DevuelveElCajeroDelToken(t *testing.T) {
	srv := newTestServer(t)
	var created dto.UserResponse
	resp := srv.do(t, http.MethodPost, "/api/auth/register", srv.token, dto.RegisterRequest{
		Email: "caja2@ferreteria.test", Password: "cajero12345", Name: "Caja 2", Role: entity.RoleCajero,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var login dto.LoginResponse
	resp = srv.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "caja2@ferreteria.test", Password: "cajero12345"}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me dto.UserResponse
	resp = srv.do(t, http.MethodGet, "/api/auth/me", login.Token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, me.ID)
	assert.Equal(t, entity.RoleCajero, me.Role)
}
