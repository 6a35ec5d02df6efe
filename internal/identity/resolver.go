package identity

import (
	"context"
	"errors"

	"github.com/wimwenigerkind/LetsMeet/internal/db"
	"github.com/wimwenigerkind/LetsMeet/internal/normalize"
	"github.com/wimwenigerkind/LetsMeet/internal/repository"
	"github.com/wimwenigerkind/LetsMeet/internal/source"
)

// ErrNoEmail marks a record that cannot be resolved to an identity.
var ErrNoEmail = errors.New("record has no email")

// Resolver turns a normalized record into a stable user id, creating the
// user row on first sighting from any source.
//
// Emails are canonicalized (trimmed, lowercased) before every lookup and
// before storage, so sources that disagree on casing still resolve to the
// same user.
type Resolver struct {
	users *repository.UserRepository
	cache *Cache
}

// NewResolver binds a resolver to a user repository and a run-scoped cache.
// Bind to a transaction-scoped repository to make created rows part of the
// surrounding record transaction.
func NewResolver(users *repository.UserRepository, cache *Cache) *Resolver {
	return &Resolver{users: users, cache: cache}
}

// Resolve returns the user id for the record's email, creating the user if
// none exists. For an existing user the fill-gaps merge applies: only
// columns that are still empty are written, the first non-empty value wins
// and conflicting later values are dropped silently.
func (r *Resolver) Resolve(ctx context.Context, rec source.Record) (id uint64, created bool, err error) {
	email := normalize.Email(rec.Email)
	if email == "" {
		return 0, false, ErrNoEmail
	}

	existing, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return 0, false, err
	}

	incoming := recordToUser(email, rec)

	if existing == nil {
		if err := r.users.Create(ctx, &incoming); err != nil {
			return 0, false, err
		}
		r.cache.Put(email, incoming.ID)
		return incoming.ID, true, nil
	}

	if _, err := r.users.FillGaps(ctx, existing, &incoming); err != nil {
		return 0, false, err
	}
	r.cache.Put(email, existing.ID)
	return existing.ID, false, nil
}

// Lookup resolves an email without ever creating a user. Used for
// cross-references; a miss means the relationship is skipped by the caller.
func (r *Resolver) Lookup(ctx context.Context, email string) (uint64, bool, error) {
	email = normalize.Email(email)
	if email == "" {
		return 0, false, nil
	}

	if id, ok := r.cache.Get(email); ok {
		return id, true, nil
	}

	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return 0, false, err
	}
	if user == nil {
		return 0, false, nil
	}

	r.cache.Put(email, user.ID)
	return user.ID, true, nil
}

// Forget drops the cache entry for an email; called after a rollback that
// discarded the created user row.
func (r *Resolver) Forget(email string) {
	r.cache.Forget(normalize.Email(email))
}

func recordToUser(email string, rec source.Record) db.User {
	return db.User{
		Email:           email,
		FirstName:       rec.FirstName,
		LastName:        rec.LastName,
		PhoneNumber:     rec.PhoneNumber,
		Gender:          rec.Gender,
		PreferredGender: rec.PreferredGender,
		BirthDate:       rec.BirthDate,
	}
}
