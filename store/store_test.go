package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"promo-restaurant-api/dbtest"
	"promo-restaurant-api/models"
	"promo-restaurant-api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, st *store.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test", Email: email, Password: "x", Role: models.RoleCustomer, Status: models.StatusActive}
	require.NoError(t, st.Users.Create(context.Background(), u))
	return u
}

func TestUserEmailIsNormalized(t *testing.T) {
	st := dbtest.Store(t)
	u := newUser(t, st, "  Ana@X.COM ")
	assert.Equal(t, "ana@x.com", u.Email)

	found, err := st.Users.FindByEmail(context.Background(), "ANA@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = st.Users.FindByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserCreateReportsDuplicateEmail(t *testing.T) {
	st := dbtest.Store(t)
	newUser(t, st, "ana@x.com")

	err := st.Users.Create(context.Background(), &models.User{Name: "Otra", Email: "ANA@x.com", Password: "x", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestSessionDeleteReportsWinner(t *testing.T) {
	st := dbtest.Store(t)
	ctx := context.Background()
	u := newUser(t, st, "a@x.com")
	sess := &models.Session{UserID: u.ID, Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.Sessions.Create(ctx, sess))

	removed, err := st.Sessions.Delete(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = st.Sessions.Delete(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSessionTokensAreUnique(t *testing.T) {
	st := dbtest.Store(t)
	ctx := context.Background()
	u := newUser(t, st, "a@x.com")

	require.NoError(t, st.Sessions.Create(ctx, &models.Session{UserID: u.ID, Token: "same", ExpiresAt: time.Now().Add(time.Hour)}))
	assert.Error(t, st.Sessions.Create(ctx, &models.Session{UserID: u.ID, Token: "same", ExpiresAt: time.Now().Add(time.Hour)}))
}

func TestDeleteAllForUser(t *testing.T) {
	st := dbtest.Store(t)
	ctx := context.Background()
	a := newUser(t, st, "a@x.com")
	b := newUser(t, st, "b@x.com")
	for _, tok := range []string{"a1", "a2"} {
		require.NoError(t, st.Sessions.Create(ctx, &models.Session{UserID: a.ID, Token: tok, ExpiresAt: time.Now().Add(time.Hour)}))
	}
	require.NoError(t, st.Sessions.Create(ctx, &models.Session{UserID: b.ID, Token: "b1", ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := st.Sessions.DeleteAllForUser(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	left, err := st.Sessions.CountForUser(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, left)
}

func TestResetMarkUsedOnlyOnce(t *testing.T) {
	st := dbtest.Store(t)
	ctx := context.Background()
	u := newUser(t, st, "a@x.com")
	r := &models.PasswordReset{UserID: u.ID, Token: "abc", ExpiresAt: time.Now().Add(models.PasswordResetTTL)}
	require.NoError(t, st.Resets.Create(ctx, r))

	first, err := st.Resets.MarkUsed(ctx, r.ID)
	require.NoError(t, err)
	second, err := st.Resets.MarkUsed(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	stored, err := st.Resets.FindByToken(ctx, "abc")
	require.NoError(t, err)
	assert.ErrorIs(t, stored.Validate(time.Now()), models.ErrPasswordResetUsed)
}

func TestTransactionRollsBack(t *testing.T) {
	st := dbtest.Store(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.Transaction(ctx, func(tx *store.Store) error {
		newUser(t, tx, "ghost@x.com")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = st.Users.FindByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwnerLookups(t *testing.T) {
	st := dbtest.Store(t)
	ctx := context.Background()
	owner := newUser(t, st, "owner@x.com")
	r := &models.Restaurant{OwnerID: owner.ID, Name: "La Arepa"}
	require.NoError(t, st.Restaurants.Create(ctx, r))
	p := &models.Promotion{
		RestaurantID: r.ID,
		Title:        "2x1",
		Description:  "Martes de arepas",
		Price:        12000,
		StartDate:    time.Now(),
		EndDate:      time.Now().Add(24 * time.Hour),
		Status:       models.PromotionActive,
	}
	require.NoError(t, st.Promotions.Create(ctx, p))

	id, err := st.Restaurants.OwnerOf(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, id)

	id, err = st.Promotions.OwnerOf(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, id)

	_, err = st.Restaurants.OwnerOf(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Promotions.OwnerOf(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwnerlessRestaurantIsNotFound(t *testing.T) {
	db := dbtest.Open(t)
	st := store.New(db)
	ctx := context.Background()
	owner := newUser(t, st, "owner@x.com")
	r := &models.Restaurant{OwnerID: owner.ID, Name: "Huérfano"}
	require.NoError(t, st.Restaurants.Create(ctx, r))

	// the test database has a single connection, so the pragma sticks
	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, db.Exec("UPDATE restaurants SET owner_id = 0 WHERE id = ?", r.ID).Error)

	_, err := st.Restaurants.OwnerOf(ctx, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRestaurantDeleteRemovesPromotions(t *testing.T) {
	st := dbtest.Store(t)
	ctx := context.Background()
	owner := newUser(t, st, "owner@x.com")
	r := &models.Restaurant{OwnerID: owner.ID, Name: "La Arepa"}
	require.NoError(t, st.Restaurants.Create(ctx, r))
	require.NoError(t, st.Promotions.Create(ctx, &models.Promotion{
		RestaurantID: r.ID, Title: "2x1", Description: "d", StartDate: time.Now(), EndDate: time.Now(),
	}))

	require.NoError(t, st.Restaurants.Delete(ctx, r.ID))

	promos, err := st.Promotions.ListByRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, promos)
	assert.ErrorIs(t, st.Restaurants.Delete(ctx, r.ID), store.ErrNotFound)
}

func TestRequestResolveIsConditional(t *testing.T) {
	st := dbtest.Store(t)
	ctx := context.Background()
	u := newUser(t, st, "a@x.com")
	req := &models.RestaurantRequest{UserID: u.ID, BusinessName: "La Arepa", Status: models.RequestPending}
	require.NoError(t, st.Requests.Create(ctx, req))

	pending, err := st.Requests.HasPending(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	notes := "ok"
	won, err := st.Requests.Resolve(ctx, req.ID, models.RequestApproved, &notes, time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	won, err = st.Requests.Resolve(ctx, req.ID, models.RequestRejected, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, won)

	stored, err := st.Requests.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, stored.Status)
	require.NotNil(t, stored.User)
	assert.Equal(t, u.ID, stored.User.ID)

	pending, err = st.Requests.HasPending(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, pending)
}
