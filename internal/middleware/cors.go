package middleware

import (
	"net/url"
	"strings"

	"travel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	defaultCORSMethods  = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	defaultCORSHeaders  = "Content-Type,dev-password,X-Trace-Id"
	defaultCORSExpose   = "X-Trace-Id"
	defaultFrontendHost = "http://localhost:5173"
	corsMaxAge          = 600
)

// CORSConfig selects which origins may call the API and what they are told.
// Empty header lists fall back to the defaults above.
type CORSConfig struct {
	AllowedSuffix  string
	DevPassword    string
	FrontendOrigin string
	AllowMethods   string
	AllowHeaders   string
	ExposeHeaders  string
}

// CORS gates cross-origin requests and hands admitted ones to fiber's cors
// middleware. An origin is admitted when it is the frontend origin, ends with
// AllowedSuffix, sends the dev-password header, or is a localhost preflight.
// Credentials are always allowed, so origins are echoed rather than wildcarded.
func CORS(cfg CORSConfig) fiber.Handler {
	frontend := originOf(cfg.FrontendOrigin)
	headers := cors.New(cors.Config{
		AllowOrigins:     frontend,
		AllowOriginsFunc: func(string) bool { return true },
		AllowMethods:     orDefault(cfg.AllowMethods, defaultCORSMethods),
		AllowHeaders:     orDefault(cfg.AllowHeaders, defaultCORSHeaders),
		ExposeHeaders:    orDefault(cfg.ExposeHeaders, defaultCORSExpose),
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		if !originAdmitted(c, cfg, frontend, origin) {
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, fiber.Map{})
		}
		return headers(c)
	}
}

func originAdmitted(c *fiber.Ctx, cfg CORSConfig, frontend, origin string) bool {
	switch {
	case strings.EqualFold(origin, frontend):
		return true
	case c.Method() == fiber.MethodOptions && isLocalhost(origin):
		return true
	case cfg.AllowedSuffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(cfg.AllowedSuffix)):
		return true
	case cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword:
		return true
	}
	return false
}

func isLocalhost(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}

// originOf reduces a frontend URL such as the invite landing base to scheme://host.
func originOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return defaultFrontendHost
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
