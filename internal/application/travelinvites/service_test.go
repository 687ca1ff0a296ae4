package travelinvites

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"travel-backend/internal/application/emails"
	policies "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/application/travels"
	"travel-backend/internal/domain"
	"travel-backend/internal/infrastructure/database"
	"travel-backend/internal/pkg/apperr"
	"travel-backend/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSender struct {
	mu      sync.Mutex
	invites []emails.TravelInvite
	fail    bool
}

func (f *fakeSender) SendWelcome(context.Context, string, string) error        { return nil }
func (f *fakeSender) SendAccountUpdated(context.Context, string, string) error { return nil }
func (f *fakeSender) SendTravelInvite(_ context.Context, inv emails.TravelInvite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites = append(f.invites, inv)
	if f.fail {
		return errors.New("smtp down")
	}
	return nil
}

type alwaysFriends struct{}

func (alwaysFriends) IsFriendsWith(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	travels *travels.Service
	mail    *fakeSender
}

func setup(t *testing.T) *fixture {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	mail := &fakeSender{}
	return &fixture{
		db:      db,
		svc:     &Service{DB: db, Email: mail, InviteBaseURL: "http://app.test/"},
		travels: &travels.Service{DB: db, Friends: alwaysFriends{}},
		mail:    mail,
	}
}

func (f *fixture) user(t *testing.T, name string) policies.Actor {
	u := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.db.Create(u).Error)
	return policies.Actor{UserID: u.UserID, Email: u.Email, Name: u.Name}
}

func (f *fixture) travel(t *testing.T, creator policies.Actor) *domain.Travel {
	tr, err := f.travels.CreateTravel(context.Background(), creator, travels.TravelInput{
		Title: "Kyoto", StartDate: "2026-03-01", EndDate: "2026-03-12",
	})
	require.NoError(t, err)
	return tr
}

func (f *fixture) token(t *testing.T, inviteID uuid.UUID) string {
	var inv domain.TravelInvite
	require.NoError(t, f.db.Where("invite_id = ?", inviteID).First(&inv).Error)
	return inv.Token
}

// A invites b@example.com; B accepts; B is an accepted member; a second accept is InvalidState.
func TestInviteAcceptFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "a")
	tr := f.travel(t, a)

	inv, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "  B@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", inv.Email)
	assert.Len(t, inv.Token, 32)
	require.Len(t, f.mail.invites, 1)
	assert.Equal(t, "http://app.test/invites/"+inv.Token, f.mail.invites[0].Link)
	assert.Equal(t, "Kyoto", f.mail.invites[0].TravelTitle)

	b := f.user(t, "b")
	accepted, err := f.svc.AcceptInvite(ctx, b, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusAccepted, accepted.Status)

	members, err := f.travels.ListMembers(ctx, b, tr.TravelID)
	require.NoError(t, err)
	var found bool
	for _, m := range members {
		if m.UserID == b.UserID {
			found = true
			assert.Equal(t, domain.MembershipAccepted, m.Status)
			assert.NotNil(t, m.InvitedAt)
		}
	}
	assert.True(t, found)

	_, err = f.svc.AcceptInvite(ctx, b, inv.Token)
	assert.ErrorIs(t, err, ErrInviteNotPending)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

// A member who is neither creator nor admin cannot invite.
func TestCreateInvite_MemberNotAuthorized(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, m := f.user(t, "a"), f.user(t, "m")
	tr := f.travel(t, a)
	_, err := f.travels.AddFriendToTravel(ctx, a, tr.TravelID, m.UserID)
	require.NoError(t, err)

	_, err = f.svc.CreateInvite(ctx, m, tr.TravelID, "x@example.com")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.True(t, apperr.IsKind(err, apperr.NotAuthorized))

	var n int64
	require.NoError(t, f.db.Model(&domain.TravelInvite{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateInvite_AdminMayInvite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, m := f.user(t, "a"), f.user(t, "m")
	tr := f.travel(t, a)
	_, err := f.travels.AddFriendToTravel(ctx, a, tr.TravelID, m.UserID)
	require.NoError(t, err)
	_, err = f.travels.UpdateMemberRole(ctx, a, tr.TravelID, m.UserID, domain.MemberRoleAdmin)
	require.NoError(t, err)

	_, err = f.svc.CreateInvite(ctx, m, tr.TravelID, "x@example.com")
	assert.NoError(t, err)
}

func TestCreateInvite_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "a")
	tr := f.travel(t, a)

	_, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "not-an-email")
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = f.svc.CreateInvite(ctx, a, tr.TravelID, "a@example.com")
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = f.svc.CreateInvite(ctx, a, tr.TravelID, "c@example.com")
	require.NoError(t, err)
	_, err = f.svc.CreateInvite(ctx, a, tr.TravelID, "C@example.com")
	assert.ErrorIs(t, err, ErrDuplicatePendingInvite)
	assert.True(t, apperr.IsKind(err, apperr.Duplicate))

	_, err = f.svc.CreateInvite(ctx, a, uuid.New(), "d@example.com")
	assert.ErrorIs(t, err, travels.ErrTravelNotFound)
}

func TestCreateInvite_EmailFailureIsNotFatal(t *testing.T) {
	f := setup(t)
	f.mail.fail = true
	a := f.user(t, "a")
	tr := f.travel(t, a)
	inv, err := f.svc.CreateInvite(context.Background(), a, tr.TravelID, "z@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusPending, inv.Status)
}

func TestCreateInvite_TokensUnique(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "a")
	tr := f.travel(t, a)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		inv, err := f.svc.CreateInvite(ctx, a, tr.TravelID, strings.Repeat("q", i+1)+"@example.com")
		require.NoError(t, err)
		assert.False(t, seen[inv.Token])
		seen[inv.Token] = true
	}
}

func TestAcceptInvite_WrongRecipientLeavesState(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, c := f.user(t, "a"), f.user(t, "c")
	tr := f.travel(t, a)
	inv, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	require.NoError(t, err)

	_, err = f.svc.AcceptInvite(ctx, c, inv.Token)
	assert.ErrorIs(t, err, ErrWrongRecipient)
	_, err = f.svc.DeclineInvite(ctx, c, inv.Token)
	assert.ErrorIs(t, err, ErrWrongRecipient)

	var got domain.TravelInvite
	require.NoError(t, f.db.First(&got, "invite_id = ?", inv.InviteID).Error)
	assert.Equal(t, domain.InviteStatusPending, got.Status)

	_, err = f.svc.AcceptInvite(ctx, c, "missing-token")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestDeclineInvite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "a")
	tr := f.travel(t, a)
	inv, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	require.NoError(t, err)
	b := f.user(t, "b")

	declined, err := f.svc.DeclineInvite(ctx, b, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusDeclined, declined.Status)

	var n int64
	require.NoError(t, f.db.Model(&domain.TravelUser{}).Where("user_id = ?", b.UserID).Count(&n).Error)
	assert.Zero(t, n)

	_, err = f.svc.AcceptInvite(ctx, b, inv.Token)
	assert.ErrorIs(t, err, ErrInviteNotPending)

	// A resolved invite frees the pending slot.
	_, err = f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	assert.NoError(t, err)
}

func TestCancelInvite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, m := f.user(t, "a"), f.user(t, "m")
	tr := f.travel(t, a)
	_, err := f.travels.AddFriendToTravel(ctx, a, tr.TravelID, m.UserID)
	require.NoError(t, err)
	inv, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.CancelInvite(ctx, m, inv.InviteID), ErrNotAuthorized)
	require.NoError(t, f.svc.CancelInvite(ctx, a, inv.InviteID))
	assert.ErrorIs(t, f.svc.CancelInvite(ctx, a, inv.InviteID), ErrInviteNotFound)

	other, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	require.NoError(t, err)
	b := f.user(t, "b")
	_, err = f.svc.AcceptInvite(ctx, b, other.Token)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.CancelInvite(ctx, a, other.InviteID), ErrInviteNotPending)
}

// The creator keeps authority over invites sent by an admin, whatever their own role row says.
func TestCreatorManagesAdminInvites(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, m := f.user(t, "a"), f.user(t, "m")
	tr := f.travel(t, a)
	_, err := f.travels.AddFriendToTravel(ctx, a, tr.TravelID, m.UserID)
	require.NoError(t, err)
	_, err = f.travels.UpdateMemberRole(ctx, a, tr.TravelID, m.UserID, domain.MemberRoleAdmin)
	require.NoError(t, err)

	first, err := f.svc.CreateInvite(ctx, m, tr.TravelID, "b@example.com")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&domain.TravelInvite{}).Where("invite_id = ?", first.InviteID).
		Update("sent_at", time.Now().Add(-25*time.Hour)).Error)
	_, err = f.svc.ResendInvite(ctx, a, first.InviteID)
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelInvite(ctx, a, first.InviteID))

	var n int64
	require.NoError(t, f.db.Model(&domain.TravelInvite{}).Where("invite_id = ?", first.InviteID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestResendInvite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "a")
	tr := f.travel(t, a)
	inv, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	require.NoError(t, err)

	_, err = f.svc.ResendInvite(ctx, a, inv.InviteID)
	assert.ErrorIs(t, err, ErrResendTooSoon)

	require.NoError(t, f.db.Model(&domain.TravelInvite{}).Where("invite_id = ?", inv.InviteID).
		Update("sent_at", time.Now().Add(-25*time.Hour)).Error)
	_, err = f.svc.ResendInvite(ctx, a, inv.InviteID)
	require.NoError(t, err)
	require.Len(t, f.mail.invites, 2)
	assert.True(t, f.mail.invites[1].Reminder)
	assert.Equal(t, inv.Token, f.token(t, inv.InviteID))
}

func TestInviteQueries(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "a")
	tr := f.travel(t, a)
	_, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	require.NoError(t, err)
	b := f.user(t, "b")

	received, err := f.svc.ListReceived(ctx, b)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "Kyoto", received[0].TravelTitle)
	assert.Equal(t, "a", received[0].SenderName)

	list, err := f.svc.ListForTravel(ctx, a, tr.TravelID)
	require.NoError(t, err)
	assert.Len(t, list.Sent, 1)
	assert.Empty(t, list.Received)

	_, err = f.svc.ListForTravel(ctx, b, tr.TravelID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	preview, err := f.svc.PreviewByToken(ctx, received[0].Token)
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", preview.TravelTitle)
	assert.Equal(t, domain.InviteStatusPending, preview.Status)
	assert.Equal(t, "a", preview.SenderName)

	// A sender whose account is gone leaves the name blank.
	require.NoError(t, f.db.Delete(&domain.User{}, "user_id = ?", a.UserID).Error)
	preview, err = f.svc.PreviewByToken(ctx, received[0].Token)
	require.NoError(t, err)
	assert.Empty(t, preview.SenderName)

	_, err = f.svc.PreviewByToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

// reuseTokenOnce makes the next travel invite insert carry token, forcing a collision.
func reuseTokenOnce(t *testing.T, db *gorm.DB, token string) {
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:reuse_invite_token", func(tx *gorm.DB) {
		inv, ok := tx.Statement.Dest.(*domain.TravelInvite)
		if !ok || fired {
			return
		}
		fired = true
		inv.Token = token
	})
	require.NoError(t, err)
}

func TestCreateInvite_RegeneratesCollidingToken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "a")
	tr := f.travel(t, a)
	existing, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	require.NoError(t, err)

	reuseTokenOnce(t, f.db, existing.Token)
	before := testutil.ToFloat64(metrics.TokenCollisions)

	inv, err := f.svc.CreateInvite(ctx, a, tr.TravelID, "c@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, existing.Token, inv.Token)
	assert.Equal(t, inv.Token, f.token(t, inv.InviteID))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TokenCollisions))

	// The outer transaction survived the failed insert and recorded the event.
	var events int64
	require.NoError(t, f.db.Model(&domain.TravelEvent{}).
		Where("travel_id = ? AND event_type = ?", tr.TravelID, domain.EventInviteCreated).Count(&events).Error)
	assert.EqualValues(t, 2, events)
}

func TestCreateInvite_LostPendingRaceIsDuplicate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t, "a")
	tr := f.travel(t, a)

	// A competing request lands its pending invite right after the pre-insert check.
	raced := false
	err := f.db.Callback().Query().After("gorm:query").Register("test:pending_race", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "travel_invites" {
			return
		}
		raced = true
		rival := &domain.TravelInvite{
			TravelID: tr.TravelID,
			SenderID: a.UserID,
			Email:    "b@example.com",
			Token:    "rivaltoken",
			Status:   domain.InviteStatusPending,
			SentAt:   time.Now(),
		}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(rival).Error)
	})
	require.NoError(t, err)
	before := testutil.ToFloat64(metrics.TokenCollisions)

	_, err = f.svc.CreateInvite(ctx, a, tr.TravelID, "b@example.com")
	assert.ErrorIs(t, err, ErrDuplicatePendingInvite)
	assert.True(t, raced)
	assert.Equal(t, before, testutil.ToFloat64(metrics.TokenCollisions))
	assert.Empty(t, f.mail.invites)
}
