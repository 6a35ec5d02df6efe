package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wimwenigerkind/LetsMeet/internal/db"
)

// Store bundles all repositories bound to one *gorm.DB. Constructing a
// Store from a transaction handle scopes every repository to that
// transaction, which is how the pipeline keeps all writes for a single
// source record atomic.
type Store struct {
	Users         *UserRepository
	Addresses     *AddressRepository
	Hobbies       *HobbyRepository
	Likes         *LikeRepository
	Friendships   *FriendshipRepository
	Conversations *ConversationRepository

	db *gorm.DB
}

func NewStore(database *gorm.DB) *Store {
	return &Store{
		Users:         NewUserRepository(database),
		Addresses:     NewAddressRepository(database),
		Hobbies:       NewHobbyRepository(database),
		Likes:         NewLikeRepository(database),
		Friendships:   NewFriendshipRepository(database),
		Conversations: NewConversationRepository(database),
		db:            database,
	}
}

// TableCount is one row of the final import summary.
type TableCount struct {
	Table string
	Count int64
}

// TableCounts reports the row count of every target table, in schema order.
func (s *Store) TableCounts(ctx context.Context) ([]TableCount, error) {
	tables := []struct {
		name  string
		model interface{}
	}{
		{"users", &db.User{}},
		{"addresses", &db.Address{}},
		{"hobbies", &db.Hobby{}},
		{"friendships", &db.Friendship{}},
		{"likes", &db.Like{}},
		{"conversations", &db.Conversation{}},
		{"conversations_users", &db.ConversationUser{}},
		{"messages", &db.Message{}},
	}

	counts := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		var n int64
		if err := s.db.WithContext(ctx).Model(t.model).Count(&n).Error; err != nil {
			return nil, err
		}
		counts = append(counts, TableCount{Table: t.name, Count: n})
	}
	return counts, nil
}
