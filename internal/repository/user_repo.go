package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/wimwenigerkind/LetsMeet/internal/db"
)

// UserRepository provides data access for the canonical users table.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// FindByEmail returns the user for the given (already canonicalized) email,
// or nil when no such user exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FillGaps applies the first-writer-wins merge: a column is written only if
// the incoming value is non-empty AND the stored value is still empty/null.
// Populated columns are never overwritten; conflicting non-empty values lose
// silently. Returns the number of columns written.
//
// `existing` is updated in place so callers see the merged state.
func (r *UserRepository) FillGaps(ctx context.Context, existing *db.User, incoming *db.User) (int, error) {
	updates := map[string]interface{}{}

	if incoming.FirstName != "" && strings.TrimSpace(existing.FirstName) == "" {
		updates["first_name"] = incoming.FirstName
		existing.FirstName = incoming.FirstName
	}
	if incoming.LastName != "" && strings.TrimSpace(existing.LastName) == "" {
		updates["last_name"] = incoming.LastName
		existing.LastName = incoming.LastName
	}
	if incoming.PhoneNumber != "" && existing.PhoneNumber == "" {
		updates["phone_number"] = incoming.PhoneNumber
		existing.PhoneNumber = incoming.PhoneNumber
	}
	if incoming.Gender != "" && existing.Gender == "" {
		updates["gender"] = incoming.Gender
		existing.Gender = incoming.Gender
	}
	if incoming.PreferredGender != "" && existing.PreferredGender == "" {
		updates["preferred_gender"] = incoming.PreferredGender
		existing.PreferredGender = incoming.PreferredGender
	}
	if incoming.BirthDate != nil && existing.BirthDate == nil {
		updates["birth_date"] = incoming.BirthDate
		existing.BirthDate = incoming.BirthDate
	}

	if len(updates) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error
	if err != nil {
		return 0, err
	}
	return len(updates), nil
}
