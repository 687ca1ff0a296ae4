package travelinvites

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"travel-backend/internal/application/emails"
	policies "travel-backend/internal/application/policies/travels"
	invitesvc "travel-backend/internal/application/travelinvites"
	travelsvc "travel-backend/internal/application/travels"
	"travel-backend/internal/domain"
	"travel-backend/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type nopSender struct{}

func (nopSender) SendWelcome(context.Context, string, string) error         { return nil }
func (nopSender) SendAccountUpdated(context.Context, string, string) error  { return nil }
func (nopSender) SendTravelInvite(context.Context, emails.TravelInvite) error { return nil }

func setupInviteHandlers(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	h := &Handlers{Service: &invitesvc.Service{DB: db, Email: nopSender{}, InviteBaseURL: "http://localhost:5173"}}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-User"); id != "" {
			c.Locals("user", map[string]interface{}{
				"user_id": id, "name": "Test", "email": c.Get("X-Test-Email"), "role": "user",
			})
		}
		return c.Next()
	})
	app.Get("/travels/invites/:token", h.Preview)
	app.Get("/invites", h.ListReceived)
	app.Post("/travels/invites/:token/accept", h.Accept)
	app.Post("/travels/invites/:token/decline", h.Decline)
	app.Post("/travels/invites/:invite/resend", h.Resend)
	app.Delete("/travels/invites/:invite", h.Cancel)
	app.Get("/travels/:travel/invites", h.ListForTravel)
	app.Post("/travels/:travel/invites", h.Create)
	return app, db
}

func user(t *testing.T, db *gorm.DB, name string) policies.Actor {
	u := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: "user"}
	require.NoError(t, db.Create(u).Error)
	return policies.Actor{UserID: u.UserID, Email: u.Email, Name: name, Role: "user"}
}

func req(t *testing.T, app *fiber.App, method, path string, a *policies.Actor, body interface{}) (int, map[string]interface{}) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	rq := httptest.NewRequest(method, path, r)
	rq.Header.Set("Content-Type", "application/json")
	if a != nil {
		rq.Header.Set("X-Test-User", a.UserID.String())
		rq.Header.Set("X-Test-Email", a.Email)
	}
	resp, err := app.Test(rq)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestInviteLifecycle(t *testing.T) {
	app, db := setupInviteHandlers(t)
	carla, bob := user(t, db, "carla"), user(t, db, "bob")
	travel, err := (&travelsvc.Service{DB: db}).CreateTravel(context.Background(), carla, travelsvc.TravelInput{
		Title: "Lisbon Trip", StartDate: "2025-06-01", EndDate: "2025-06-10",
	})
	require.NoError(t, err)
	base := "/travels/" + travel.TravelID.String() + "/invites"

	code, _ := req(t, app, "POST", base, nil, map[string]string{"email": "bob@example.com"})
	assert.Equal(t, fiber.StatusUnauthorized, code)
	code, _ = req(t, app, "POST", base, &carla, map[string]string{"email": "not-an-email"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, out := req(t, app, "POST", base, &carla, map[string]string{"email": "Bob@Example.com"})
	require.Equal(t, fiber.StatusCreated, code, out)
	invite := out["data"].(map[string]interface{})["invite"].(map[string]interface{})
	assert.Equal(t, "bob@example.com", invite["email"])
	assert.NotContains(t, invite, "token")
	inviteID := invite["invite_id"].(string)

	code, _ = req(t, app, "POST", base, &carla, map[string]string{"email": "bob@example.com"})
	assert.Equal(t, fiber.StatusConflict, code)

	code, out = req(t, app, "GET", base, &carla, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"].(map[string]interface{})["sent"], 1)

	code, _ = req(t, app, "POST", "/travels/invites/"+inviteID+"/resend", &carla, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, out = req(t, app, "GET", "/invites", &bob, nil)
	require.Equal(t, fiber.StatusOK, code)
	received := out["data"].(map[string]interface{})["invites"].([]interface{})
	require.Len(t, received, 1)
	token := received[0].(map[string]interface{})["token"].(string)

	code, out = req(t, app, "GET", "/travels/invites/"+token, nil, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "pending", out["data"].(map[string]interface{})["invite"].(map[string]interface{})["status"])
	code, _ = req(t, app, "GET", "/travels/invites/missing", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = req(t, app, "POST", "/travels/invites/"+token+"/decline", &carla, nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = req(t, app, "POST", "/travels/invites/"+token+"/decline", &bob, nil)
	require.Equal(t, fiber.StatusOK, code)
	code, _ = req(t, app, "POST", "/travels/invites/"+token+"/accept", &bob, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = req(t, app, "DELETE", "/travels/invites/"+inviteID, &carla, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}

func TestCancelPendingInvite(t *testing.T) {
	app, db := setupInviteHandlers(t)
	carla, sam := user(t, db, "carla"), user(t, db, "sam")
	travel, err := (&travelsvc.Service{DB: db}).CreateTravel(context.Background(), carla, travelsvc.TravelInput{
		Title: "Porto", StartDate: "2025-07-01", EndDate: "2025-07-03",
	})
	require.NoError(t, err)

	code, out := req(t, app, "POST", "/travels/"+travel.TravelID.String()+"/invites", &carla, map[string]string{"email": "x@example.com"})
	require.Equal(t, fiber.StatusCreated, code, out)
	inviteID := out["data"].(map[string]interface{})["invite"].(map[string]interface{})["invite_id"].(string)

	code, _ = req(t, app, "DELETE", "/travels/invites/"+inviteID, &sam, nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = req(t, app, "DELETE", "/travels/invites/"+inviteID, &carla, nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = req(t, app, "DELETE", "/travels/invites/"+inviteID, &carla, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}
