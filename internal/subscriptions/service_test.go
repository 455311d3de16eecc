package subscriptions

import (
	"context"
	"io"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/identity"
	"github.com/haulbase/haulbase/internal/models"
)

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	batchGets int
}

func newFakeUserStore(seed ...models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[string]models.User{}}
	for _, u := range seed {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return &u, nil
}

func (f *fakeUserStore) PutUser(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, apperr.NotFound("no user with email %s", email)
}

func (f *fakeUserStore) ListUsersByCarrier(ctx context.Context, carrierID string) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUserStore) BatchGetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchGets++
	out := []models.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) AddSubscriptions(ctx context.Context, userID string, adminIDs, carrierIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	u.SubscribedAdminIDs = addToSet(u.SubscribedAdminIDs, adminIDs)
	u.SubscribedCarrierIDs = addToSet(u.SubscribedCarrierIDs, carrierIDs)
	f.users[userID] = u
	return nil
}

func (f *fakeUserStore) RemoveSubscriptions(ctx context.Context, userID string, adminIDs, carrierIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	u.SubscribedAdminIDs = removeFromSet(u.SubscribedAdminIDs, adminIDs)
	u.SubscribedCarrierIDs = removeFromSet(u.SubscribedCarrierIDs, carrierIDs)
	f.users[userID] = u
	return nil
}

func (f *fakeUserStore) BackfillUserDefaults(ctx context.Context, userID string) error { return nil }

func addToSet(set, ids []string) []string {
	for _, id := range ids {
		found := false
		for _, v := range set {
			if v == id {
				found = true
				break
			}
		}
		if !found {
			set = append(set, id)
		}
	}
	return set
}

func removeFromSet(set, ids []string) []string {
	out := set[:0]
	for _, v := range set {
		keep := true
		for _, id := range ids {
			if v == id {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, v)
		}
	}
	return out
}

type fakeAssetStore struct {
	mu        sync.Mutex
	assets    map[string]models.Asset
	batchGets int
}

func newFakeAssetStore(seed ...models.Asset) *fakeAssetStore {
	f := &fakeAssetStore{assets: map[string]models.Asset{}}
	for _, a := range seed {
		f.assets[a.ID+"/"+string(a.Kind)] = a
	}
	return f
}

func (f *fakeAssetStore) GetAsset(ctx context.Context, id string, kind models.AssetKind) (*models.Asset, error) {
	return nil, apperr.NotFound("asset %s not found", id)
}
func (f *fakeAssetStore) PutAsset(ctx context.Context, asset models.Asset) error { return nil }
func (f *fakeAssetStore) FindAssetByVIN(ctx context.Context, carrierID, vin string, kind models.AssetKind) (*models.Asset, error) {
	return nil, apperr.NotFound("no asset")
}
func (f *fakeAssetStore) FindAssetByPlate(ctx context.Context, carrierID, plate string, kind models.AssetKind) (*models.Asset, error) {
	return nil, apperr.NotFound("no asset")
}
func (f *fakeAssetStore) ListAssetsByOwner(ctx context.Context, ownerID string) ([]models.Asset, error) {
	return nil, nil
}
func (f *fakeAssetStore) ListAssetsByCarrier(ctx context.Context, carrierID string) ([]models.Asset, error) {
	return nil, nil
}
func (f *fakeAssetStore) ListAllAssets(ctx context.Context) ([]models.Asset, error) { return nil, nil }

func (f *fakeAssetStore) BatchGetAssets(ctx context.Context, ids []string, kind models.AssetKind) ([]models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchGets++
	out := []models.Asset{}
	for _, id := range ids {
		if a, ok := f.assets[id+"/"+string(kind)]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeProvider struct {
	nextID  string
	created []string
}

func (f *fakeProvider) CreateUser(ctx context.Context, email, name string, role models.Role) (string, error) {
	f.created = append(f.created, email)
	return f.nextID, nil
}

func (f *fakeProvider) GetUser(ctx context.Context, userID string) (*identity.Identity, error) {
	return &identity.Identity{ID: userID}, nil
}

func testLogger() *log.Entry {
	logger := log.New()
	logger.Out = io.Discard
	return log.NewEntry(logger)
}

func TestGetSubscriptions_NeverNil(t *testing.T) {
	users := newFakeUserStore(models.User{ID: "u1"})
	svc := NewService(users, newFakeAssetStore(), nil, testLogger())

	subs, err := svc.GetSubscriptions(context.Background(), "u1")
	assert.NoError(t, err)
	assert.NotNil(t, subs.SubscribedAdminIDs)
	assert.NotNil(t, subs.SubscribedCarrierIDs)
	assert.Empty(t, subs.SubscribedAdminIDs)
	assert.Empty(t, subs.SubscribedCarrierIDs)
}

func TestUpdateSubscriptions(t *testing.T) {
	ctx := context.Background()

	t.Run("empty change set returns current state", func(t *testing.T) {
		users := newFakeUserStore(models.User{ID: "u1", SubscribedCarrierIDs: []string{"c1"}})
		svc := NewService(users, newFakeAssetStore(), nil, testLogger())

		subs, err := svc.UpdateSubscriptions(ctx, "u1", Changes{})
		assert.NoError(t, err)
		assert.Equal(t, []string{"c1"}, subs.SubscribedCarrierIDs)
	})

	t.Run("adds then removes", func(t *testing.T) {
		users := newFakeUserStore(models.User{ID: "u1"})
		svc := NewService(users, newFakeAssetStore(), nil, testLogger())

		subs, err := svc.UpdateSubscriptions(ctx, "u1", Changes{
			AddAdminIDs:   []string{"adm1"},
			AddCarrierIDs: []string{"c1", "c2"},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"adm1"}, subs.SubscribedAdminIDs)
		assert.ElementsMatch(t, []string{"c1", "c2"}, subs.SubscribedCarrierIDs)

		subs, err = svc.UpdateSubscriptions(ctx, "u1", Changes{RemoveCarrierIDs: []string{"c1"}})
		assert.NoError(t, err)
		assert.Equal(t, []string{"c2"}, subs.SubscribedCarrierIDs)
		assert.Equal(t, []string{"adm1"}, subs.SubscribedAdminIDs)
	})
}

func TestCreatePlaceholderUser(t *testing.T) {
	ctx := context.Background()

	t.Run("carrier auto-subscribes the creator", func(t *testing.T) {
		users := newFakeUserStore(models.User{ID: "creator"})
		provider := &fakeProvider{nextID: "new-carrier"}
		svc := NewService(users, newFakeAssetStore(), provider, testLogger())

		id, err := svc.CreatePlaceholderUser(ctx, "creator", "c@example.com", "Carrier Co", models.RoleCarrier)
		assert.NoError(t, err)
		assert.Equal(t, "new-carrier", id)

		// The new carrier is its own tenant.
		created, err := users.GetUser(ctx, "new-carrier")
		assert.NoError(t, err)
		assert.Equal(t, "new-carrier", created.CarrierID)

		subs, err := svc.GetSubscriptions(ctx, "creator")
		assert.NoError(t, err)
		assert.Equal(t, []string{"new-carrier"}, subs.SubscribedCarrierIDs)
	})

	t.Run("admin lands in the admin watch-list", func(t *testing.T) {
		users := newFakeUserStore(models.User{ID: "creator"})
		provider := &fakeProvider{nextID: "new-admin"}
		svc := NewService(users, newFakeAssetStore(), provider, testLogger())

		_, err := svc.CreatePlaceholderUser(ctx, "creator", "a@example.com", "Admin", models.RoleAdmin)
		assert.NoError(t, err)

		subs, err := svc.GetSubscriptions(ctx, "creator")
		assert.NoError(t, err)
		assert.Equal(t, []string{"new-admin"}, subs.SubscribedAdminIDs)
		assert.Empty(t, subs.SubscribedCarrierIDs)
	})

	t.Run("driver triggers no auto-subscription", func(t *testing.T) {
		users := newFakeUserStore(models.User{ID: "creator"})
		provider := &fakeProvider{nextID: "new-driver"}
		svc := NewService(users, newFakeAssetStore(), provider, testLogger())

		_, err := svc.CreatePlaceholderUser(ctx, "creator", "d@example.com", "Driver", models.RoleDriver)
		assert.NoError(t, err)

		subs, err := svc.GetSubscriptions(ctx, "creator")
		assert.NoError(t, err)
		assert.Empty(t, subs.SubscribedAdminIDs)
		assert.Empty(t, subs.SubscribedCarrierIDs)
	})
}

func TestResolveEntities(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input returns empty map without store calls", func(t *testing.T) {
		users := newFakeUserStore()
		assets := newFakeAssetStore()
		svc := NewService(users, assets, nil, testLogger())

		result, err := svc.ResolveEntities(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, result)
		assert.Equal(t, 0, users.batchGets)
		assert.Equal(t, 0, assets.batchGets)
	})

	t.Run("merges users, trucks and trailers", func(t *testing.T) {
		users := newFakeUserStore(models.User{ID: "u1", Name: "Dana", Role: models.RoleDriver})
		assets := newFakeAssetStore(
			models.Asset{ID: "t1", Kind: models.KindTruck, Plate: "PLT-1", Brand: "Volvo", Year: 2021},
			models.Asset{ID: "r1", Kind: models.KindTrailer, Plate: "PLT-2", Brand: "Utility", Year: 2019},
		)
		svc := NewService(users, assets, nil, testLogger())

		result, err := svc.ResolveEntities(ctx, []string{"u1", "t1", "r1"})
		assert.NoError(t, err)
		assert.Equal(t, EntityInfo{Name: "Dana", Type: "user", Role: "driver"}, result["u1"])
		assert.Equal(t, EntityInfo{Name: "PLT-1", Type: "truck", Brand: "Volvo", Year: 2021}, result["t1"])
		assert.Equal(t, EntityInfo{Name: "PLT-2", Type: "trailer", Brand: "Utility", Year: 2019}, result["r1"])
	})

	t.Run("unresolved ids get the unknown marker", func(t *testing.T) {
		svc := NewService(newFakeUserStore(), newFakeAssetStore(), nil, testLogger())

		result, err := svc.ResolveEntities(ctx, []string{"ghost"})
		assert.NoError(t, err)
		assert.Equal(t, EntityInfo{Name: "Unknown", Type: "unknown"}, result["ghost"])
	})
}
