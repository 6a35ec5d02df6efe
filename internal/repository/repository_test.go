package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wimwenigerkind/LetsMeet/internal/db"
	"github.com/wimwenigerkind/LetsMeet/internal/repository"
)

// setupTestDB opens an in-memory SQLite DB with the full target schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func seedUsers(t *testing.T, database *gorm.DB, emails ...string) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, len(emails))
	for _, email := range emails {
		u := db.User{Email: email}
		require.NoError(t, database.Create(&u).Error)
		ids = append(ids, u.ID)
	}
	return ids
}

func intPtr(v int) *int { return &v }

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewUserRepository(database)

	seedUsers(t, database, "hans@example.com")

	user, err := repo.FindByEmail(ctx, "hans@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "hans@example.com", user.Email)

	missing, err := repo.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_FillGaps(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewUserRepository(database)

	birth := time.Date(1990, time.March, 12, 0, 0, 0, 0, time.UTC)
	existing := db.User{Email: "hans@example.com", FirstName: "Hans"}
	require.NoError(t, database.Create(&existing).Error)

	incoming := db.User{
		FirstName: "Johannes", // conflicts with populated value, must lose
		LastName:  "Müller",
		Gender:    "male",
		BirthDate: &birth,
	}

	n, err := repo.FillGaps(ctx, &existing, &incoming)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var got db.User
	require.NoError(t, database.First(&got, existing.ID).Error)
	assert.Equal(t, "Hans", got.FirstName, "populated field must not be overwritten")
	assert.Equal(t, "Müller", got.LastName)
	assert.Equal(t, "male", got.Gender)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, birth, got.BirthDate.UTC())

	// a second merge with nothing new is a no-op
	n, err = repo.FillGaps(ctx, &existing, &incoming)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestHobbyRepository_UpsertPolicy(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewHobbyRepository(database)

	ids := seedUsers(t, database, "hans@example.com")
	userID := ids[0]

	// first sighting without rating
	created, err := repo.Upsert(ctx, userID, "Schach", nil)
	require.NoError(t, err)
	assert.True(t, created)

	// later source refines the rating
	_, err = repo.Upsert(ctx, userID, "Schach", intPtr(80))
	require.NoError(t, err)

	// a ratingless source must not erase the known rating
	_, err = repo.Upsert(ctx, userID, "Schach", nil)
	require.NoError(t, err)

	var hobbies []db.Hobby
	require.NoError(t, database.Where("user_id = ?", userID).Find(&hobbies).Error)
	require.Len(t, hobbies, 1, "at most one row per (user, name)")
	require.NotNil(t, hobbies[0].Rating)
	assert.Equal(t, 80, *hobbies[0].Rating)

	// non-nil rating overwrites
	_, err = repo.Upsert(ctx, userID, "Schach", intPtr(60))
	require.NoError(t, err)
	require.NoError(t, database.Where("user_id = ?", userID).Find(&hobbies).Error)
	require.Len(t, hobbies, 1)
	assert.Equal(t, 60, *hobbies[0].Rating)
}

func TestLikeRepository_Create(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewLikeRepository(database)

	ids := seedUsers(t, database, "a@example.com", "b@example.com")

	created, err := repo.Create(ctx, &db.Like{LikerUserID: ids[0], LikedUserID: ids[1], Status: "liked"})
	require.NoError(t, err)
	assert.True(t, created)

	// duplicate ordered pair is ignored
	created, err = repo.Create(ctx, &db.Like{LikerUserID: ids[0], LikedUserID: ids[1], Status: "superliked"})
	require.NoError(t, err)
	assert.False(t, created)

	// self-like rejected before insert
	_, err = repo.Create(ctx, &db.Like{LikerUserID: ids[0], LikedUserID: ids[0]})
	assert.ErrorIs(t, err, repository.ErrSelfReference)

	var count int64
	require.NoError(t, database.Model(&db.Like{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// Friendship uniqueness is directional: (a,b) followed by (b,a) yields two
// rows. This pins the intended behavior explicitly.
func TestFriendshipRepository_DirectionalPairs(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewFriendshipRepository(database)

	ids := seedUsers(t, database, "a@example.com", "b@example.com")

	created, err := repo.Create(ctx, &db.Friendship{UserID1: ids[0], UserID2: ids[1], Status: "accepted"})
	require.NoError(t, err)
	assert.True(t, created)

	// exact duplicate is ignored
	created, err = repo.Create(ctx, &db.Friendship{UserID1: ids[0], UserID2: ids[1], Status: "accepted"})
	require.NoError(t, err)
	assert.False(t, created)

	// reversed pair is NOT recognized as a duplicate
	created, err = repo.Create(ctx, &db.Friendship{UserID1: ids[1], UserID2: ids[0], Status: "accepted"})
	require.NoError(t, err)
	assert.True(t, created)

	var count int64
	require.NoError(t, database.Model(&db.Friendship{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// self-friendship rejected
	_, err = repo.Create(ctx, &db.Friendship{UserID1: ids[0], UserID2: ids[0]})
	assert.ErrorIs(t, err, repository.ErrSelfReference)
}

func TestConversationRepository(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewConversationRepository(database)

	ids := seedUsers(t, database, "a@example.com", "b@example.com")

	created, err := repo.Ensure(ctx, "conv-17", nil)
	require.NoError(t, err)
	assert.True(t, created)

	// second reference to the same source id is a no-op
	created, err = repo.Ensure(ctx, "conv-17", nil)
	require.NoError(t, err)
	assert.False(t, created)

	for _, id := range ids {
		created, err = repo.AddParticipant(ctx, "conv-17", id)
		require.NoError(t, err)
		assert.True(t, created)
	}

	// participant join rows are idempotent
	created, err = repo.AddParticipant(ctx, "conv-17", ids[0])
	require.NoError(t, err)
	assert.False(t, created)

	sent := time.Date(2023, time.June, 2, 9, 0, 0, 0, time.UTC)
	msg := db.Message{ConversationID: "conv-17", SenderUserID: ids[0], MessageText: "Hallo!", SentAt: sent}
	require.NoError(t, repo.AppendMessage(ctx, &msg))
	// messages are append-only, duplicates allowed
	msg2 := db.Message{ConversationID: "conv-17", SenderUserID: ids[0], MessageText: "Hallo!", SentAt: sent}
	require.NoError(t, repo.AppendMessage(ctx, &msg2))

	var msgCount int64
	require.NoError(t, database.Model(&db.Message{}).Count(&msgCount).Error)
	assert.Equal(t, int64(2), msgCount)
}

func TestStore_TableCounts(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	store := repository.NewStore(database)

	seedUsers(t, database, "a@example.com", "b@example.com")

	counts, err := store.TableCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 8)
	assert.Equal(t, "users", counts[0].Table)
	assert.Equal(t, int64(2), counts[0].Count)
}
