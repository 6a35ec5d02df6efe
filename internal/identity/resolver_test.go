package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wimwenigerkind/LetsMeet/internal/db"
	"github.com/wimwenigerkind/LetsMeet/internal/identity"
	"github.com/wimwenigerkind/LetsMeet/internal/repository"
	"github.com/wimwenigerkind/LetsMeet/internal/source"
)

func setupResolver(t *testing.T) (*identity.Resolver, *identity.Cache, *gorm.DB) {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	cache := identity.NewCache()
	return identity.NewResolver(repository.NewUserRepository(database), cache), cache, database
}

func TestResolver_CreatesOnFirstSighting(t *testing.T) {
	ctx := context.Background()
	resolver, cache, database := setupResolver(t)

	id, created, err := resolver.Resolve(ctx, source.Record{
		Email:     "Hans@Example.com",
		FirstName: "Hans",
		LastName:  "Müller",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, id)

	// email is stored canonicalized
	var user db.User
	require.NoError(t, database.First(&user, id).Error)
	assert.Equal(t, "hans@example.com", user.Email)

	// and cached for cross-references
	cachedID, ok := cache.Get("hans@example.com")
	assert.True(t, ok)
	assert.Equal(t, id, cachedID)
}

// The same email seen again, in any casing, resolves to the same user and
// never creates a duplicate.
func TestResolver_DeduplicatesAcrossSightings(t *testing.T) {
	ctx := context.Background()
	resolver, _, database := setupResolver(t)

	first, created, err := resolver.Resolve(ctx, source.Record{Email: "hans@example.com"})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := resolver.Resolve(ctx, source.Record{Email: "  HANS@example.COM "})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)

	var count int64
	require.NoError(t, database.Model(&db.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// First writer wins: a later sighting fills gaps but never overwrites
// populated fields.
func TestResolver_FillGapsMerge(t *testing.T) {
	ctx := context.Background()
	resolver, _, database := setupResolver(t)

	id, _, err := resolver.Resolve(ctx, source.Record{
		Email:     "hans@example.com",
		FirstName: "Hans",
	})
	require.NoError(t, err)

	_, _, err = resolver.Resolve(ctx, source.Record{
		Email:       "hans@example.com",
		FirstName:   "Johannes", // loses silently
		LastName:    "Müller",   // fills the gap
		PhoneNumber: "030 123456",
	})
	require.NoError(t, err)

	var user db.User
	require.NoError(t, database.First(&user, id).Error)
	assert.Equal(t, "Hans", user.FirstName)
	assert.Equal(t, "Müller", user.LastName)
	assert.Equal(t, "030 123456", user.PhoneNumber)
}

func TestResolver_NoEmail(t *testing.T) {
	ctx := context.Background()
	resolver, _, _ := setupResolver(t)

	_, _, err := resolver.Resolve(ctx, source.Record{FirstName: "Hans"})
	assert.ErrorIs(t, err, identity.ErrNoEmail)
}

func TestResolver_Lookup(t *testing.T) {
	ctx := context.Background()
	resolver, cache, database := setupResolver(t)

	id, _, err := resolver.Resolve(ctx, source.Record{Email: "hans@example.com"})
	require.NoError(t, err)

	// cache hit
	got, ok, err := resolver.Lookup(ctx, "Hans@Example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	// unknown email is a miss, never a create
	_, ok, err = resolver.Lookup(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	var count int64
	require.NoError(t, database.Model(&db.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// a cold cache re-resolves through the database, as a second run would
	cache.Forget("hans@example.com")
	got, ok, err = resolver.Lookup(ctx, "hans@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestResolver_ForgetAfterRollback(t *testing.T) {
	ctx := context.Background()
	resolver, cache, _ := setupResolver(t)

	_, created, err := resolver.Resolve(ctx, source.Record{Email: "hans@example.com"})
	require.NoError(t, err)
	require.True(t, created)

	resolver.Forget("Hans@Example.com")
	_, ok := cache.Get("hans@example.com")
	assert.False(t, ok)
}
