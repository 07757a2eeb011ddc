package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promo-restaurant-api/dbtest"
	"promo-restaurant-api/mail"
	"promo-restaurant-api/middleware"
	"promo-restaurant-api/security"
	"promo-restaurant-api/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminEmail    = "admin@promo.test"
	adminPassword = "admin123"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st := dbtest.Store(t)
	log := zerolog.Nop()
	hasher := security.NewHasher()
	tokens := security.NewTokenManager(security.TokenConfig{
		AccessSecret:  []byte("routes-access"),
		RefreshSecret: []byte("routes-refresh"),
	})
	// unconfigured SMTP only logs the reset link
	notifier := mail.NewSMTPNotifier(mail.Config{}, log)

	_, err := services.EnsureDefaultAdmin(context.Background(), st, hasher,
		services.AdminSeed{Email: adminEmail, Password: adminPassword}, log)
	require.NoError(t, err)

	return NewRouter(Deps{
		Store:      st,
		Tokens:     tokens,
		Auth:       services.NewAuthService(st, hasher, tokens, notifier, "http://app.test/reset-password", log),
		Requests:   services.NewRequestService(st, log),
		Users:      services.NewUserService(st, log),
		Log:        log,
		Secure:     middleware.SecureOptions(true),
		CORSOrigin: "*",
	})
}

func call(t *testing.T, r http.Handler, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Body.String() != "null" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func login(t *testing.T, r http.Handler, email, password string) map[string]interface{} {
	t.Helper()
	code, body := call(t, r, "POST", "/api/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, code, body)
	return body
}

func TestRegisterLoginAndProfile(t *testing.T) {
	r := newTestRouter(t)

	code, body := call(t, r, "POST", "/api/auth/register", "",
		`{"nombre":"Ana","email":"Ana@Mail.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, code, body)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ana@mail.com", user["email"])
	assert.Equal(t, "cliente", user["rol"])
	assert.NotContains(t, user, "password")
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])

	code, _ = call(t, r, "POST", "/api/auth/register", "",
		`{"nombre":"Ana","email":"ana@mail.com","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	session := login(t, r, "ana@mail.com", "secret1")
	code, me := call(t, r, "GET", "/api/auth/me", session["access"].(string), "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, fmt.Sprint(me), "ana@mail.com")

	code, body = call(t, r, "POST", "/api/auth/login", "", `{"email":"ana@mail.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Credenciales inválidas", body["message"])
}

func TestValidationErrorShape(t *testing.T) {
	r := newTestRouter(t)

	code, body := call(t, r, "POST", "/api/auth/register", "",
		`{"nombre":"Ana","email":"not-an-email","password":"123"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Datos inválidos", body["message"])
	fields := body["errors"].(map[string]interface{})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestPasswordsOverBcryptLimitAreInvalidInput(t *testing.T) {
	r := newTestRouter(t)
	long := strings.Repeat("a", 73)

	code, body := call(t, r, "POST", "/api/auth/register", "",
		fmt.Sprintf(`{"nombre":"Ana","email":"ana@mail.com","password":%q}`, long))
	require.Equal(t, http.StatusBadRequest, code, body)
	assert.Equal(t, "Datos inválidos", body["message"])
	assert.Contains(t, body["errors"].(map[string]interface{}), "password")

	code, body = call(t, r, "POST", "/api/auth/reset-password", "",
		fmt.Sprintf(`{"token":"abc","password":%q}`, long))
	require.Equal(t, http.StatusBadRequest, code, body)
	assert.Equal(t, "Datos inválidos", body["message"])
	assert.Contains(t, body["errors"].(map[string]interface{}), "password")

	// within the character limit but over 72 bytes
	code, body = call(t, r, "POST", "/api/auth/register", "",
		fmt.Sprintf(`{"nombre":"Ana","email":"ana@mail.com","password":%q}`, strings.Repeat("ñ", 40)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "La contraseña no puede superar 72 bytes", body["message"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := newTestRouter(t)

	code, body := call(t, r, "GET", "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No token provided", body["message"])

	code, _ = call(t, r, "GET", "/api/usuarios", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRefreshRotationRejectsReuse(t *testing.T) {
	r := newTestRouter(t)
	session := login(t, r, adminEmail, adminPassword)
	old := session["refresh"].(string)

	code, rotated := call(t, r, "POST", "/api/auth/refresh", "", fmt.Sprintf(`{"refreshToken":%q}`, old))
	require.Equal(t, http.StatusOK, code, rotated)
	assert.NotEqual(t, old, rotated["refresh"])

	code, _ = call(t, r, "POST", "/api/auth/refresh", "", fmt.Sprintf(`{"refreshToken":%q}`, old))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := call(t, r, "POST", "/api/auth/logout", "", fmt.Sprintf(`{"refreshToken":%q}`, rotated["refresh"]))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, _ = call(t, r, "POST", "/api/auth/refresh", "", fmt.Sprintf(`{"refreshToken":%q}`, rotated["refresh"]))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestForgotPasswordIsGeneric(t *testing.T) {
	r := newTestRouter(t)

	codeKnown, known := call(t, r, "POST", "/api/auth/forgot-password", "", `{"email":"admin@promo.test"}`)
	codeUnknown, unknown := call(t, r, "POST", "/api/auth/forgot-password", "", `{"email":"ghost@promo.test"}`)
	assert.Equal(t, http.StatusOK, codeKnown)
	assert.Equal(t, codeKnown, codeUnknown)
	assert.Equal(t, known, unknown)
}

func TestOwnershipRequestLifecycle(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, adminEmail, adminPassword)["access"].(string)

	code, _ := call(t, r, "POST", "/api/auth/register", "", `{"nombre":"Luis","email":"luis@mail.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, code)
	customer := login(t, r, "luis@mail.com", "secret1")["access"].(string)

	// customers cannot touch restaurants or admin routes
	code, _ = call(t, r, "PUT", "/api/restaurantes/1", customer, `{"nombreComercial":"x"}`)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(t, r, "GET", "/api/solicitudes-restaurante", customer, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, created := call(t, r, "POST", "/api/solicitudes-restaurante", customer,
		`{"nombreComercial":"La Arepa","ciudad":"Bogotá"}`)
	require.Equal(t, http.StatusCreated, code, created)
	assert.Equal(t, "pendiente", created["estado"])
	id := int(created["idSolicitud"].(float64))

	code, _ = call(t, r, "POST", "/api/solicitudes-restaurante", customer, `{"nombreComercial":"Otra"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, mine := call(t, r, "GET", "/api/solicitudes-restaurante/mine", customer, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, id, mine["idSolicitud"])

	code, approved := call(t, r, "PATCH", fmt.Sprintf("/api/solicitudes-restaurante/%d/aprobar", id), admin, "")
	require.Equal(t, http.StatusOK, code, approved)
	assert.Equal(t, "aprobado", approved["estado"])
	assert.NotNil(t, approved["fechaResolucion"])

	code, again := call(t, r, "PATCH", fmt.Sprintf("/api/solicitudes-restaurante/%d/rechazar", id), admin, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "La solicitud ya fue resuelta", again["message"])

	// the new role shows up in freshly issued tokens
	owner := login(t, r, "luis@mail.com", "secret1")
	assert.Equal(t, "restaurante", owner["user"].(map[string]interface{})["rol"])

	code, listed := call(t, r, "GET", "/api/restaurantes/1", "", "")
	require.Equal(t, http.StatusOK, code)
	restaurant := listed["restaurante"].(map[string]interface{})
	assert.Equal(t, "La Arepa", restaurant["nombreComercial"])

	code, _ = call(t, r, "PUT", "/api/restaurantes/1", owner["access"].(string), `{"ciudad":"Medellín"}`)
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, r, "PUT", "/api/restaurantes/99", owner["access"].(string), `{"ciudad":"Cali"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, promo := call(t, r, "POST", "/api/promociones", owner["access"].(string),
		`{"idRestaurante":1,"titulo":"2x1","descripcion":"Martes de arepas","precio":12000,"fechaInicio":"2026-01-01T00:00:00Z","fechaFin":"2099-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusCreated, code, promo)
}

func TestAdminDisablesUser(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, adminEmail, adminPassword)["access"].(string)

	code, reg := call(t, r, "POST", "/api/auth/register", "", `{"nombre":"Eva","email":"eva@mail.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, code)
	id := int(reg["user"].(map[string]interface{})["idUsuario"].(float64))

	code, _ = call(t, r, "PATCH", fmt.Sprintf("/api/usuarios/%d/desactivar", id), admin, "")
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, r, "POST", "/api/auth/login", "", `{"email":"eva@mail.com","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = call(t, r, "POST", "/api/auth/refresh", "", fmt.Sprintf(`{"refreshToken":%q}`, reg["refresh"]))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	code, body := call(t, r, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "promo_http_request_duration_seconds")
}
