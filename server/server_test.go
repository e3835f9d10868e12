package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gengocodes/gensupply-backend/auth"
	"github.com/gengocodes/gensupply-backend/config"
	"github.com/gengocodes/gensupply-backend/database"
	"github.com/gengocodes/gensupply-backend/handlers"
	"github.com/gengocodes/gensupply-backend/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testOrigin = "http://localhost:5173"
	testSecret = "end-to-end-secret-that-is-32-bytes!!"
)

func testConfig() *config.Config {
	return &config.Config{
		AllowedOrigin:  testOrigin,
		Environment:    "test",
		DBDriver:       config.DriverSQLite,
		DBQueryTimeout: 5 * time.Second,
		JWTSecret:      testSecret,
		JWTTTL:         10 * time.Minute,
		BcryptCost:     4,
		CookieSecure:   true,
	}
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dbConn, err := sqlx.Open(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	dbConn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = dbConn.Close() })

	require.NoError(t, database.Migrate(context.Background(), dbConn, config.DriverSQLite))
	return dbConn
}

// newTestApp builds the full router on an in-memory database. A non-nil
// miniredis enables token revocation.
func newTestApp(t *testing.T, mr *miniredis.Miniredis) http.Handler {
	t.Helper()

	deps := Dependencies{
		Config: testConfig(),
		DB:     newTestDB(t),
		Logger: zap.NewNop(),
	}
	if mr != nil {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		deps.Redis = client
	}
	return Build(deps)
}

// browser holds the session cookie between requests the way a client would.
type browser struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (b *browser) do(method, path, body string) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Origin", testOrigin)
	if b.token != "" {
		req.AddCookie(&http.Cookie{Name: handlers.TokenCookie, Value: b.token})
	}

	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == handlers.TokenCookie {
			b.token = c.Value
		}
	}
	return rec
}

func (b *browser) register(name, email, password string) {
	b.t.Helper()
	rec := b.do(http.MethodPost, "/register",
		`{"name":"`+name+`","email":"`+email+`","password":"`+password+`"}`)
	require.Equal(b.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (b *browser) login(email, password string) {
	b.t.Helper()
	rec := b.do(http.MethodPost, "/login", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(b.t, b.token)
}

func (b *browser) supplies() []models.Supply {
	b.t.Helper()
	rec := b.do(http.MethodGet, "/supply", "")
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	var list []models.Supply
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &list))
	return list
}

func bodyField(t *testing.T, rec *httptest.ResponseRecorder, field string) string {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	value, _ := payload[field].(string)
	return value
}

func TestSupplyLifecycle(t *testing.T) {
	al := &browser{t: t, handler: newTestApp(t, nil)}

	al.register("Al", "al@x.com", "pw")
	al.login("al@x.com", "pw")

	rec := al.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User Authenticated!", bodyField(t, rec, "Status"))

	assert.Empty(t, al.supplies())
	assert.Equal(t, "[]\n", al.do(http.MethodGet, "/supply", "").Body.String())

	rec = al.do(http.MethodPost, "/supply/create", `{"name":"bolts","count":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Supply Created!", bodyField(t, rec, "Status"))

	list := al.supplies()
	require.Len(t, list, 1)
	assert.Equal(t, "bolts", list[0].Name)
	assert.Equal(t, 10, list[0].Count)
	assert.NotZero(t, list[0].UserID)
	id := list[0].ID

	rec = al.do(http.MethodPut, "/supply/update/"+itoa(id), `{"name":"nuts","count":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Supply Updated!", bodyField(t, rec, "Status"))

	// Same values again still counts as a match.
	rec = al.do(http.MethodPut, "/supply/update/"+itoa(id), `{"name":"nuts","count":4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	list = al.supplies()
	require.Len(t, list, 1)
	assert.Equal(t, "nuts", list[0].Name)
	assert.Equal(t, 4, list[0].Count)

	rec = al.do(http.MethodDelete, "/supply/delete/"+itoa(id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Supply Deleted!", bodyField(t, rec, "Status"))
	assert.Empty(t, al.supplies())

	rec = al.do(http.MethodDelete, "/supply/delete/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Supply not found!", bodyField(t, rec, "Error"))
}

func TestRegisterAndLoginFailures(t *testing.T) {
	app := newTestApp(t, nil)
	al := &browser{t: t, handler: app}
	al.register("Al", "al@x.com", "pw")

	rec := al.do(http.MethodPost, "/register", `{"name":"Other","email":"al@x.com","password":"pw2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already in use.", bodyField(t, rec, "Error"))

	rec = al.do(http.MethodPost, "/register", `{"name":"Other","email":"AL@X.com","password":"pw2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = al.do(http.MethodPost, "/register", `{"name":"Al","email":"long@x.com","password":"`+strings.Repeat("p", 80)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must be at most 72 bytes!", bodyField(t, rec, "Error"))

	rec = al.do(http.MethodPost, "/register", `{"name":"","email":"b@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stranger := &browser{t: t, handler: app}
	rec = stranger.do(http.MethodPost, "/login", `{"email":"nobody@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unregistered Email!", bodyField(t, rec, "Error"))
	assert.Empty(t, stranger.token)

	rec = stranger.do(http.MethodPost, "/login", `{"email":"al@x.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Wrong Password!", bodyField(t, rec, "Error"))
	assert.Empty(t, stranger.token)

	rec = stranger.do(http.MethodGet, "/supply", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "You are not authenticated!", bodyField(t, rec, "Error"))
}

func TestSuppliesAreIsolatedPerOwner(t *testing.T) {
	app := newTestApp(t, nil)

	al := &browser{t: t, handler: app}
	al.register("Al", "al@x.com", "pw")
	al.login("al@x.com", "pw")
	require.Equal(t, http.StatusCreated, al.do(http.MethodPost, "/supply/create", `{"name":"bolts","count":10}`).Code)
	alSupply := al.supplies()[0]

	bo := &browser{t: t, handler: app}
	bo.register("Bo", "bo@x.com", "pw")
	bo.login("bo@x.com", "pw")

	assert.Empty(t, bo.supplies())

	rec := bo.do(http.MethodPut, "/supply/update/"+itoa(alSupply.ID), `{"name":"stolen","count":0}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Supply not found!", bodyField(t, rec, "Error"))

	rec = bo.do(http.MethodDelete, "/supply/delete/"+itoa(alSupply.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	list := al.supplies()
	require.Len(t, list, 1)
	assert.Equal(t, alSupply, list[0])
}

func TestUpdateNameReissuesSession(t *testing.T) {
	al := &browser{t: t, handler: newTestApp(t, nil)}
	al.register("Al", "al@x.com", "pw")
	al.login("al@x.com", "pw")
	before := al.token

	rec := al.do(http.MethodPost, "/updatename", `{"username":"Alan"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Username Updated!", bodyField(t, rec, "Status"))
	assert.NotEqual(t, before, al.token)

	rec = al.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "Alan", me.User.Name)
	assert.Equal(t, "al@x.com", me.User.Email)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	app := newTestApp(t, nil)

	past := time.Now().Add(-time.Hour)
	claims := &auth.Claims{
		ID:    1,
		Name:  "Al",
		Email: "al@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "expired",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(10 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	b := &browser{t: t, handler: app, token: token}
	rec := b.do(http.MethodGet, "/supply", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Session timed out!", bodyField(t, rec, "Error"))
}

func TestLogout(t *testing.T) {
	t.Run("with redis the old token is revoked", func(t *testing.T) {
		mr := miniredis.RunT(t)
		al := &browser{t: t, handler: newTestApp(t, mr)}
		al.register("Al", "al@x.com", "pw")
		al.login("al@x.com", "pw")
		stolen := al.token

		rec := al.do(http.MethodGet, "/logout", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logged out!", bodyField(t, rec, "Status"))
		assert.Empty(t, al.token)

		replay := &browser{t: t, handler: al.handler, token: stolen}
		rec = replay.do(http.MethodGet, "/", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Session timed out!", bodyField(t, rec, "Error"))
	})

	t.Run("without redis only the cookie is cleared", func(t *testing.T) {
		al := &browser{t: t, handler: newTestApp(t, nil)}
		al.register("Al", "al@x.com", "pw")
		al.login("al@x.com", "pw")
		stolen := al.token

		rec := al.do(http.MethodGet, "/logout", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, al.token)

		replay := &browser{t: t, handler: al.handler, token: stolen}
		assert.Equal(t, http.StatusOK, replay.do(http.MethodGet, "/", "").Code)
	})
}

func TestUpdateNameRevokesPreviousToken(t *testing.T) {
	mr := miniredis.RunT(t)
	al := &browser{t: t, handler: newTestApp(t, mr)}
	al.register("Al", "al@x.com", "pw")
	al.login("al@x.com", "pw")
	old := al.token

	require.Equal(t, http.StatusOK, al.do(http.MethodPost, "/updatename", `{"username":"Alan"}`).Code)

	replay := &browser{t: t, handler: al.handler, token: old}
	assert.Equal(t, http.StatusUnauthorized, replay.do(http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, al.do(http.MethodGet, "/", "").Code)
}

func TestCrossOriginRequests(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/supply/update/1", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"name":"Al","email":"al@x.com","password":"pw"}`))
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", bodyField(t, rec, "status"))

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/supply/update/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
