// Package importer orchestrates the multi-source identity-keyed upsert
// pipeline: sources run sequentially in a fixed order, every record resolves
// to a canonical user by email, and all writes for one record happen inside
// one scoped transaction.
package importer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/wimwenigerkind/LetsMeet/internal/db"
	"github.com/wimwenigerkind/LetsMeet/internal/identity"
	"github.com/wimwenigerkind/LetsMeet/internal/normalize"
	"github.com/wimwenigerkind/LetsMeet/internal/repository"
	"github.com/wimwenigerkind/LetsMeet/internal/source"
)

// Pipeline runs the configured sources against the target database.
// Processing is strictly sequential; the identity cache needs no locking
// because there is exactly one worker.
type Pipeline struct {
	db      *gorm.DB
	log     *slog.Logger
	cache   *identity.Cache
	sources []source.Source
}

// New builds a pipeline. Source order matters: later sources assume the
// users referenced by their relationships already exist.
func New(database *gorm.DB, log *slog.Logger, sources ...source.Source) *Pipeline {
	return &Pipeline{
		db:      database,
		log:     log,
		cache:   identity.NewCache(),
		sources: sources,
	}
}

// Run executes all sources in order and returns the run report. Only
// source-level failures (missing file, unreachable store) abort the run;
// per-record problems are counted and skipped.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	rep := NewReport()
	p.log.Info("starting import", "run_id", rep.RunID, "sources", len(p.sources))

	for _, src := range p.sources {
		if err := p.runSource(ctx, src, rep); err != nil {
			return rep, err
		}
	}

	counts, err := repository.NewStore(p.db).TableCounts(ctx)
	if err != nil {
		return rep, err
	}
	rep.TableCounts = counts

	p.log.Info("import finished", "run_id", rep.RunID, "resolved_users", p.cache.Len())
	return rep, nil
}

func (p *Pipeline) runSource(ctx context.Context, src source.Source, rep *Report) error {
	log := p.log.With("source", src.Name())

	records, err := src.Records(ctx)
	if err != nil {
		return &ImportError{Kind: SourceUnavailable, Source: src.Name(), Err: err}
	}

	stats := rep.source(src.Name())
	stats.Records += len(records)
	log.Info("loaded records", "count", len(records))

	// Pass 1: users and their owned rows (address, hobbies).
	for i, rec := range records {
		if normalize.Email(rec.Email) == "" {
			stats.Skipped++
			rep.Malformed++
			log.Warn("skipping record without email", "row", i+1)
			continue
		}
		if err := p.importRecord(ctx, src.Name(), rec, rep); err != nil {
			stats.Skipped++
			log.Warn("skipping record", "row", i+1, "email", rec.Email, "err", err)
			continue
		}
		stats.Imported++
	}

	// Pass 2: relationships. A reference may point at a record later in
	// the same batch, so these only resolve after pass 1 is complete.
	for i, rec := range records {
		if !rec.HasRelations() || normalize.Email(rec.Email) == "" {
			continue
		}
		if err := p.importRelations(ctx, src.Name(), rec, rep, log); err != nil {
			log.Warn("skipping relationships", "row", i+1, "email", rec.Email, "err", err)
		}
	}

	return nil
}

// importRecord writes the user plus address and hobbies inside one
// transaction; a mid-record failure leaves no partial rows behind.
func (p *Pipeline) importRecord(ctx context.Context, srcName string, rec source.Record, rep *Report) error {
	var createdUser, createdAddress bool
	var hobbiesWritten int

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := repository.NewStore(tx)
		resolver := identity.NewResolver(store.Users, p.cache)

		userID, created, err := resolver.Resolve(ctx, rec)
		if err != nil {
			return err
		}
		createdUser = created

		if rec.Address != nil {
			addr := &db.Address{
				UserID:      userID,
				Street:      rec.Address.Street,
				HouseNumber: rec.Address.HouseNumber,
				PostalCode:  rec.Address.PostalCode,
				City:        rec.Address.City,
			}
			if err := store.Addresses.Create(ctx, addr); err != nil {
				return err
			}
			createdAddress = true
		}

		for _, h := range rec.Hobbies {
			written, err := store.Hobbies.Upsert(ctx, userID, h.Name, h.Rating)
			if err != nil {
				return err
			}
			if written {
				hobbiesWritten++
			}
		}
		return nil
	})
	if err != nil {
		// the rollback discarded the user row, so the cache entry
		// created inside the transaction must go too
		if createdUser {
			p.cache.Forget(rec.Email)
		}
		return &ImportError{Kind: MalformedRecord, Source: srcName, Ref: rec.Email, Err: err}
	}

	if createdUser {
		rep.Add("users", 1)
	}
	if createdAddress {
		rep.Add("addresses", 1)
	}
	rep.Add("hobbies", hobbiesWritten)
	return nil
}

// importRelations writes likes, friendships and messages for one record
// inside one transaction. Unknown referenced emails skip that single
// relationship; duplicates and self-references skip that single insert.
func (p *Pipeline) importRelations(ctx context.Context, srcName string, rec source.Record, rep *Report, log *slog.Logger) error {
	var likes, friendships, conversations, participants, messages int
	var constraintSkips, unresolved int

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := repository.NewStore(tx)
		resolver := identity.NewResolver(store.Users, p.cache)

		ownerID, ok, err := resolver.Lookup(ctx, rec.Email)
		if err != nil {
			return err
		}
		if !ok {
			return &ImportError{Kind: UnresolvedReference, Source: srcName, Ref: rec.Email}
		}

		for _, like := range rec.Likes {
			targetID, ok, err := resolver.Lookup(ctx, like.LikedEmail)
			if err != nil {
				return err
			}
			if !ok {
				unresolved++
				log.Warn("like target unknown, skipping", "email", rec.Email, "target", like.LikedEmail)
				continue
			}

			row := &db.Like{LikerUserID: ownerID, LikedUserID: targetID, Status: like.Status}
			if like.Timestamp != nil {
				row.CreatedAt = *like.Timestamp
				row.UpdatedAt = *like.Timestamp
			}
			created, err := store.Likes.Create(ctx, row)
			if errors.Is(err, repository.ErrSelfReference) {
				constraintSkips++
				continue
			}
			if err != nil {
				return err
			}
			if created {
				likes++
			} else {
				constraintSkips++
			}
		}

		for _, friendEmail := range rec.Friends {
			friendID, ok, err := resolver.Lookup(ctx, friendEmail)
			if err != nil {
				return err
			}
			if !ok {
				unresolved++
				log.Warn("friend unknown, skipping", "email", rec.Email, "friend", friendEmail)
				continue
			}

			row := &db.Friendship{UserID1: ownerID, UserID2: friendID, Status: "accepted"}
			if rec.CreatedAt != nil {
				row.CreatedAt = *rec.CreatedAt
			}
			created, err := store.Friendships.Create(ctx, row)
			if errors.Is(err, repository.ErrSelfReference) {
				constraintSkips++
				continue
			}
			if err != nil {
				return err
			}
			if created {
				friendships++
			} else {
				constraintSkips++
			}
		}

		for _, msg := range rec.Messages {
			receiverID, ok, err := resolver.Lookup(ctx, msg.ReceiverEmail)
			if err != nil {
				return err
			}
			if !ok {
				unresolved++
				log.Warn("message receiver unknown, skipping", "email", rec.Email, "receiver", msg.ReceiverEmail)
				continue
			}

			created, err := store.Conversations.Ensure(ctx, msg.ConversationID, msg.SentAt)
			if err != nil {
				return err
			}
			if created {
				conversations++
			}
			for _, uid := range []uint64{ownerID, receiverID} {
				added, err := store.Conversations.AddParticipant(ctx, msg.ConversationID, uid)
				if err != nil {
					return err
				}
				if added {
					participants++
				}
			}

			sentAt := time.Now().UTC()
			if msg.SentAt != nil {
				sentAt = *msg.SentAt
			}
			if err := store.Conversations.AppendMessage(ctx, &db.Message{
				ConversationID: msg.ConversationID,
				SenderUserID:   ownerID,
				MessageText:    msg.Text,
				SentAt:         sentAt,
			}); err != nil {
				return err
			}
			messages++
		}

		return nil
	})
	if err != nil {
		return err
	}

	rep.Add("likes", likes)
	rep.Add("friendships", friendships)
	rep.Add("conversations", conversations)
	rep.Add("participants", participants)
	rep.Add("messages", messages)
	rep.ConstraintSkips += constraintSkips
	rep.UnresolvedRefs += unresolved
	return nil
}
