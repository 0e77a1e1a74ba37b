package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"nateiva/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Users: []*models.User{
			{ID: "u1", Name: "Alice", Role: models.RoleTutor},
		},
		CurrentUser: &models.User{ID: "u1", Name: "Alice", Role: models.RoleTutor},
		Organizations: []*models.Organization{
			{ID: "org-1", Name: "Centre", OwnerID: "u1"},
		},
		Memberships: []*models.Membership{
			{UserID: "u1", OrganizationID: "org-1", Role: models.MemberOwner},
		},
	}
}

func verifyRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Users)

	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Users, 1)
	require.NotNil(t, got.CurrentUser)
	assert.Equal(t, "u1", got.CurrentUser.ID)
	assert.Equal(t, "org-1", got.Organizations[0].ID)
	require.Len(t, got.Memberships, 1)
	assert.Equal(t, models.MemberOwner, got.Memberships[0].Role)
}

func TestMemoryStore(t *testing.T) {
	verifyRoundTrip(t, NewMemoryStore())
}

func TestSnapshotJSONShape(t *testing.T) {
	t.Run("CurrentUserIsFullRecord", func(t *testing.T) {
		raw, err := json.Marshal(sampleSnapshot())
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &doc))

		var current models.User
		require.NoError(t, json.Unmarshal(doc["currentUser"], &current))
		assert.Equal(t, "u1", current.ID)
		assert.Equal(t, "Alice", current.Name)
	})

	t.Run("KeyAbsentWithoutSession", func(t *testing.T) {
		raw, err := json.Marshal(&Snapshot{})
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &doc))
		_, present := doc["currentUser"]
		assert.False(t, present)
	})
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.json")
	verifyRoundTrip(t, NewFileStore(path))

	t.Run("SaveReplacesPrevious", func(t *testing.T) {
		store := NewFileStore(path)
		ctx := context.Background()
		require.NoError(t, store.Save(ctx, sampleSnapshot()))
		require.NoError(t, store.Save(ctx, &Snapshot{CurrentUser: &models.User{ID: "u2"}}))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, got.CurrentUser)
		assert.Equal(t, "u2", got.CurrentUser.ID)
		assert.Empty(t, got.Users)
	})
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	verifyRoundTrip(t, NewRedisStore(client))
}

type failingStore struct {
	err error
}

func (f *failingStore) Save(context.Context, *Snapshot) error   { return f.err }
func (f *failingStore) Load(context.Context) (*Snapshot, error) { return nil, f.err }

func TestFailoverStore(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("HealthyPrimaryWins", func(t *testing.T) {
		primary := NewMemoryStore()
		fallback := NewMemoryStore()
		store := NewFailoverStore(primary, fallback, &logger)

		require.NoError(t, store.Save(ctx, sampleSnapshot()))

		got, err := primary.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, got.Users, 1)

		fromFallback, err := fallback.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, fromFallback.Users)
	})

	t.Run("FallsBackOnPrimaryError", func(t *testing.T) {
		fallback := NewMemoryStore()
		store := NewFailoverStore(&failingStore{err: errors.New("down")}, fallback, &logger)

		require.NoError(t, store.Save(ctx, sampleSnapshot()))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, got.Users, 1)
	})
}
