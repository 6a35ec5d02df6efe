package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wimwenigerkind/LetsMeet/internal/db"
)

// ErrSelfReference is returned when a like or friendship points at its own
// user. Rejected before touching the database.
var ErrSelfReference = errors.New("self-referencing relationship")

// AddressRepository inserts address rows. The legacy data enforces no
// uniqueness on addresses, so this is a plain append.
type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(database *gorm.DB) *AddressRepository {
	return &AddressRepository{db: database}
}

func (r *AddressRepository) Create(ctx context.Context, addr *db.Address) error {
	return r.db.WithContext(ctx).Create(addr).Error
}

// HobbyRepository upserts hobby rows keyed on (user_id, name).
type HobbyRepository struct {
	db *gorm.DB
}

func NewHobbyRepository(database *gorm.DB) *HobbyRepository {
	return &HobbyRepository{db: database}
}

// Upsert inserts a hobby, or on conflict refines the stored rating.
//
// Policy (consistent across all sources):
//   - incoming rating non-nil: rating is overwritten — a later, more
//     specific source refines the data
//   - incoming rating nil: conflicting insert is a no-op, so a ratingless
//     source never erases a known rating
//
// Returns whether a row was written.
func (r *HobbyRepository) Upsert(ctx context.Context, userID uint64, name string, rating *int) (bool, error) {
	hobby := db.Hobby{UserID: userID, Name: name, Rating: rating}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoNothing: true,
	}
	if rating != nil {
		conflict.DoNothing = false
		conflict.DoUpdates = clause.AssignmentColumns([]string{"rating"})
	}

	res := r.db.WithContext(ctx).Clauses(conflict).Create(&hobby)
	return res.RowsAffected > 0, res.Error
}

// LikeRepository inserts directed like edges.
type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Create inserts a like, ignoring duplicates of the (liker, liked) pair.
// Self-likes return ErrSelfReference.
func (r *LikeRepository) Create(ctx context.Context, like *db.Like) (bool, error) {
	if like.LikerUserID == like.LikedUserID {
		return false, ErrSelfReference
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "liker_user_id"}, {Name: "liked_user_id"}},
			DoNothing: true,
		}).
		Create(like)
	return res.RowsAffected > 0, res.Error
}

// FriendshipRepository inserts friendship edges.
//
// Uniqueness holds on the ordered pair as stored; (a,b) and (b,a) are NOT
// recognized as the same friendship. See DESIGN.md for why the order is
// not canonicalized.
type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(database *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: database}
}

func (r *FriendshipRepository) Create(ctx context.Context, friendship *db.Friendship) (bool, error) {
	if friendship.UserID1 == friendship.UserID2 {
		return false, ErrSelfReference
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id_1"}, {Name: "user_id_2"}},
			DoNothing: true,
		}).
		Create(friendship)
	return res.RowsAffected > 0, res.Error
}

// ConversationRepository manages conversations, their participant join rows
// and messages.
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(database *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: database}
}

// Ensure lazily creates a conversation on first reference to its source id.
func (r *ConversationRepository) Ensure(ctx context.Context, id string, createdAt *time.Time) (bool, error) {
	conv := db.Conversation{ID: id}
	if createdAt != nil {
		conv.CreatedAt = *createdAt
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&conv)
	return res.RowsAffected > 0, res.Error
}

// AddParticipant idempotently links a user to a conversation.
func (r *ConversationRepository) AddParticipant(ctx context.Context, conversationID string, userID uint64) (bool, error) {
	row := db.ConversationUser{ConversationID: conversationID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row)
	return res.RowsAffected > 0, res.Error
}

// AppendMessage always appends; the legacy data allows duplicate messages.
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
