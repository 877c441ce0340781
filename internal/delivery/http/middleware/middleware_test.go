package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guardquote/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode body %q: %v", b, err)
	}
	return env
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{})
	app.Use(NewErrorMiddleware(nil).Middleware())
	return app
}

func TestErrorMiddleware_AppError(t *testing.T) {
	app := newApp()
	app.Get("/conflict", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "Invalid transition", fiber.Map{"from": "pending"}, errors.New("detail"))
	})
	app.Get("/unavailable", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusServiceUnavailable, "db down: secret dsn", nil, errors.New("dial tcp"))
	})
	app.Get("/panic", func(c fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/conflict", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	env := decode(t, resp)
	if resp.StatusCode != fiber.StatusConflict || env.Message != "Invalid transition" || string(env.Data) != `{"from":"pending"}` {
		t.Fatalf("unexpected conflict response: %d %+v", resp.StatusCode, env)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/unavailable", nil))
	env = decode(t, resp)
	if resp.StatusCode != fiber.StatusServiceUnavailable || env.Message != "service unavailable" {
		t.Fatalf("unexpected 503 response: %d %+v", resp.StatusCode, env)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	svc := jwt.NewHMACService("a", "r", time.Minute, time.Hour, "test")
	id := uuid.New()

	app := newApp()
	app.Get("/me", NewAuthMiddleware(svc).Middleware(), func(c fiber.Ctx) error {
		uid, ok := UserID(c)
		if !ok {
			return errors.New("missing user id")
		}
		return c.SendString(uid.String())
	})

	access, _ := svc.GenerateAccessToken(id, "me@example.com")
	refresh, _ := svc.GenerateRefreshToken(id)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, fiber.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", fiber.StatusUnauthorized},
		{"valid", "bearer " + access, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
			if tc.want == fiber.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				if string(b) != id.String() {
					t.Fatalf("unexpected body %q", b)
				}
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.allow("1.1.1.1") || !rl.allow("1.1.1.1") {
		t.Fatalf("burst should be allowed")
	}
	if rl.allow("1.1.1.1") {
		t.Fatalf("third request in the same instant should be limited")
	}
	if !rl.allow("2.2.2.2") {
		t.Fatalf("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.allow("1.1.1.1") {
		t.Fatalf("a token should refill after one second")
	}

	now = now.Add(visitorIdleTTL + sweepInterval)
	rl.allow("3.3.3.3")
	if _, ok := rl.visitors["1.1.1.1"]; ok {
		t.Fatalf("idle visitor should be swept")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	app := newApp()
	app.Post("/login", NewRateLimiter(0.001, 1).Middleware(), func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first request: %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("second request: %d", resp.StatusCode)
	}
}
