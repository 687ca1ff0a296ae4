package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestSession_LoginPersistsAndLoads(t *testing.T) {
	_, rdb := setupRedis(t)
	uid := uuid.New().String()

	app := fiber.New()
	app.Use(SessionWithClient(rdb, ""))
	app.Post("/login", func(c *fiber.Ctx) error {
		sid := RegenerateSessionID(c)
		SetSessionUser(c, SessionUser{UserID: uid, Name: "Ana", Email: "ana@example.com", Role: "user"})
		return c.SendString(sid)
	})
	app.Get("/me", RequireAuth(), func(c *fiber.Ctx) error {
		actor, _ := CurrentActor(c)
		return c.SendString(actor.UserID.String() + "|" + actor.Email)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	sid := string(b)

	stored, err := rdb.Get(context.Background(), SessionRedisPrefix+sid).Bytes()
	require.NoError(t, err)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(stored, &data))
	assert.Contains(t, data, "user")

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", SessionCookieName+"=s:"+sid)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ = io.ReadAll(resp.Body)
	assert.Equal(t, uid+"|ana@example.com", string(b))
}

func TestRequireAuth_UnknownSessionIs401(t *testing.T) {
	_, rdb := setupRedis(t)
	app := fiber.New()
	app.Use(SessionWithClient(rdb, ""))
	app.Get("/me", RequireAuth(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", SessionCookieName+"=s:does-not-exist")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSession_SignedCookie(t *testing.T) {
	_, rdb := setupRedis(t)
	const secret = "s3cret"

	app := fiber.New()
	app.Use(SessionWithClient(rdb, secret))
	app.Post("/login", func(c *fiber.Ctx) error {
		sid := RegenerateSessionID(c)
		SetSessionUser(c, SessionUser{UserID: uuid.New().String(), Email: "ana@example.com", Role: "user"})
		return c.SendString(sid)
	})
	app.Get("/me", RequireAuth(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	sid := string(b)

	cases := map[string]int{
		SignSessionID(secret, sid):  fiber.StatusOK,
		"s:" + sid:                  fiber.StatusUnauthorized,
		"s:" + sid + ".forged":      fiber.StatusUnauthorized,
		SignSessionID("other", sid): fiber.StatusUnauthorized,
	}
	for cookie, want := range cases {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Cookie", SessionCookieName+"="+cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, cookie)
	}
}

func TestParseSessionCookie(t *testing.T) {
	assert.Equal(t, "abc", parseSessionCookie("s:abc", ""))
	assert.Equal(t, "abc", parseSessionCookie("abc", ""))
	assert.Equal(t, "abc", parseSessionCookie(SignSessionID("k", "abc"), "k"))
	assert.Empty(t, parseSessionCookie("s:abc", "k"))
	assert.Equal(t, "s:abc", SignSessionID("", "abc"))
}

func TestCurrentActor_RejectsMalformedUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": "not-a-uuid"})
		return c.Next()
	})
	app.Get("/", RequireAuth(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthorizePermission(t *testing.T) {
	mk := func(role string) *fiber.App {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user", map[string]interface{}{"user_id": uuid.New().String(), "role": role})
			return c.Next()
		})
		app.Get("/", AuthorizePermission("list_users"), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
		return app
	}
	resp, err := mk("admin").Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = mk("user").Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = mk("").Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestErrorHandler_Records5xx(t *testing.T) {
	mr, rdb := setupRedis(t)
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(rdb)})
	app.Use(Tracing())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	entries, err := mr.List(KeyErrorLog)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".travel.app", DevPassword: "letmein"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://web.travel.app")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://web.travel.app", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("dev-password", "letmein")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCORS_FrontendOriginAndConfiguredHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{
		FrontendOrigin: "https://plan.example.com/invites",
		AllowMethods:   "GET,POST",
		ExposeHeaders:  "X-Trace-Id,X-Request-Id",
	}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "https://plan.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://plan.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://plan.example.com")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "X-Trace-Id,X-Request-Id", resp.Header.Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestHealthMarker_CountsRequests(t *testing.T) {
	mr, rdb := setupRedis(t)
	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/travels", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, p := range []string{"/travels", "/travels", "/health/json"} {
		_, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
	}
	total, err := mr.Get(KeyReqTotal)
	require.NoError(t, err)
	assert.Equal(t, "2", total)
	assert.False(t, mr.Exists(KeyReqErrors))
}
