// Package source holds the per-source adapters of the import pipeline.
// Every legacy format (Excel dump, XML hobby list, MongoDB collection) is
// read by its own adapter and normalized into the common Record shape; the
// pipeline itself never sees a raw row, element or document.
package source

import (
	"context"
	"time"

	"github.com/wimwenigerkind/LetsMeet/internal/normalize"
)

// Record is the normalized shape all adapters produce: canonical user
// fields plus the dependent entities the source carried for that user.
// Email is the identity key; a Record without one is malformed and gets
// skipped by the pipeline.
type Record struct {
	Email           string
	FirstName       string
	LastName        string
	PhoneNumber     string
	Gender          string
	PreferredGender string
	BirthDate       *time.Time

	Address *normalize.Address
	Hobbies []normalize.HobbyEntry

	Likes    []LikeRef
	Friends  []string
	Messages []MessageRef

	// CreatedAt is the source-side creation timestamp, used for
	// friendship rows where the legacy data carried no own timestamp.
	CreatedAt *time.Time
}

// LikeRef is a directed like pointing at another user by email.
type LikeRef struct {
	LikedEmail string
	Status     string
	Timestamp  *time.Time
}

// MessageRef is one legacy message, keyed by the source conversation id
// and the receiver's email.
type MessageRef struct {
	ConversationID string
	ReceiverEmail  string
	Text           string
	SentAt         *time.Time
}

// HasRelations reports whether the record references other users and
// therefore needs the pipeline's second (relationship) pass.
func (r Record) HasRelations() bool {
	return len(r.Likes) > 0 || len(r.Friends) > 0 || len(r.Messages) > 0
}

// Source is one legacy data source. Records loads and normalizes the whole
// batch; a failure here is fatal for the run (source-unavailable class),
// while per-record problems surface as malformed Records instead.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]Record, error)
}
