package db

import (
	"time"
)

// User is the canonical user row. A user is unique by email; every legacy
// source resolves to exactly one row here.
//
// Fields other than Email may be filled in by any source. Once a field is
// populated it is never overwritten by a later source (fill-gaps merge).
type User struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	Email           string `gorm:"uniqueIndex;size:255;not null"`
	FirstName       string `gorm:"size:100"`
	LastName        string `gorm:"size:100"`
	PhoneNumber     string `gorm:"size:50"`
	Gender          string `gorm:"size:20"`
	PreferredGender string `gorm:"size:20"`
	BirthDate       *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// Address belongs to one user. The legacy data has no uniqueness guarantee
// for addresses, so multiple rows per user are tolerated.
type Address struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	UserID      uint64 `gorm:"index;not null"`
	Street      string `gorm:"size:200"`
	HouseNumber string `gorm:"size:20"`
	PostalCode  string `gorm:"size:20"`
	City        string `gorm:"size:100"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// Hobby is unique per (user, name). Rating is an optional 0-100 priority;
// nil when the source carried none.
type Hobby struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"uniqueIndex:idx_user_hobby,priority:1;not null"`
	Name      string `gorm:"uniqueIndex:idx_user_hobby,priority:2;size:100;not null"`
	Rating    *int
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Like is a directed edge liker -> liked.
//
// Composite PK (LikerUserID, LikedUserID) guarantees at most one row per
// ordered pair. A mutual like ("match") is derived from two opposite rows,
// never stored.
type Like struct {
	LikerUserID uint64    `gorm:"primaryKey"`
	LikedUserID uint64    `gorm:"primaryKey"`
	Status      string    `gorm:"size:32"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Friendship is stored as an ordered pair. Uniqueness holds on the pair as
// stored; (a,b) and (b,a) are distinct rows (see DESIGN.md).
type Friendship struct {
	UserID1   uint64    `gorm:"column:user_id_1;primaryKey"`
	UserID2   uint64    `gorm:"column:user_id_2;primaryKey"`
	Status    string    `gorm:"size:32;default:pending"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Conversation ids come from the source system, so the PK is the external
// string identifier rather than an autoincrement.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:64"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ConversationUser links participants to a conversation.
type ConversationUser struct {
	ConversationID string `gorm:"primaryKey;size:64"`
	UserID         uint64 `gorm:"primaryKey"`
}

// TableName keeps the legacy join table name.
func (ConversationUser) TableName() string { return "conversations_users" }

// Message belongs to one conversation and one sender. Messages are
// append-only; the import performs no dedup on them.
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	ConversationID string    `gorm:"index;size:64;not null"`
	SenderUserID   uint64    `gorm:"index;not null"`
	MessageText    string    `gorm:"type:text"`
	SentAt         time.Time
}
