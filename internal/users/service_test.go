package users

import (
	"context"
	"io"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/models"
)

type fakeUserStore struct {
	users map[string]models.User
	puts  int
}

func newFakeUserStore(seed ...models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[string]models.User{}}
	for _, u := range seed {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return &u, nil
}

func (f *fakeUserStore) PutUser(ctx context.Context, user models.User) error {
	f.puts++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("no user with email %s", email)
}

func (f *fakeUserStore) ListUsersByCarrier(ctx context.Context, carrierID string) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		if u.CarrierID == carrierID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) BatchGetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	return nil, nil
}
func (f *fakeUserStore) AddSubscriptions(ctx context.Context, userID string, adminIDs, carrierIDs []string) error {
	return nil
}
func (f *fakeUserStore) RemoveSubscriptions(ctx context.Context, userID string, adminIDs, carrierIDs []string) error {
	return nil
}
func (f *fakeUserStore) BackfillUserDefaults(ctx context.Context, userID string) error { return nil }

func newTestService(store *fakeUserStore) *Service {
	logger := log.New()
	logger.Out = io.Discard
	svc := NewService(store, log.NewEntry(logger))
	svc.newID = func() string { return "user-1" }
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active user", func(t *testing.T) {
		store := newFakeUserStore()
		svc := newTestService(store)

		user, err := svc.Create(ctx, "c1", CreateSpec{
			Email: "d@example.com", Name: "Dana", Role: models.RoleDriver, CDLNumber: "CDL-9",
		})
		assert.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.Equal(t, "c1", user.CarrierID)
		assert.Equal(t, "CDL-9", user.CDLNumber)
	})

	t.Run("carrier becomes its own tenant", func(t *testing.T) {
		svc := newTestService(newFakeUserStore())

		user, err := svc.Create(ctx, "ignored", CreateSpec{
			Email: "c@example.com", Name: "Carrier Co", Role: models.RoleCarrier,
		})
		assert.NoError(t, err)
		assert.Equal(t, user.ID, user.CarrierID)
	})

	t.Run("duplicate email conflicts across carriers", func(t *testing.T) {
		store := newFakeUserStore(models.User{ID: "u0", Email: "d@example.com", CarrierID: "c2"})
		svc := newTestService(store)

		_, err := svc.Create(ctx, "c1", CreateSpec{Email: "d@example.com", Name: "Dana", Role: models.RoleDriver})
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("invalid input is rejected", func(t *testing.T) {
		svc := newTestService(newFakeUserStore())

		_, err := svc.Create(ctx, "c1", CreateSpec{Email: "not-an-email", Name: "Dana", Role: models.RoleDriver})
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))

		_, err = svc.Create(ctx, "c1", CreateSpec{Email: "d@example.com", Role: models.RoleDriver})
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))

		_, err = svc.Create(ctx, "c1", CreateSpec{Email: "d@example.com", Name: "Dana", Role: "superuser"})
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(models.User{ID: "u1", CarrierID: "c1", IsActive: true})
	svc := newTestService(store)

	user, err := svc.Get(ctx, "u1", "c1")
	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = svc.Get(ctx, "u1", "c2")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.Get(ctx, "ghost", "c1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_ListByCarrier_ActiveOnly(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(
		models.User{ID: "u1", CarrierID: "c1", IsActive: true},
		models.User{ID: "u2", CarrierID: "c1", IsActive: false},
	)
	svc := newTestService(store)

	list, err := svc.ListByCarrier(ctx, "c1")
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].ID)
}

func TestService_Deactivate(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore(models.User{ID: "u1", CarrierID: "c1", IsActive: true})
	svc := newTestService(store)

	user, err := svc.Deactivate(ctx, "u1", "c1")
	assert.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.False(t, store.users["u1"].IsActive)
}
