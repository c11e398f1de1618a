package forum

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Replies interface {
	repository.Repository[*Reply]

	Publish(ctx context.Context, reply *Reply) (*Reply, error)
	PublishTx(ctx context.Context, tx bun.IDB, reply *Reply) (*Reply, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*Reply, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type replies struct {
	repository.Repository[*Reply]
	db *bun.DB
}

var _ Replies = (*replies)(nil)

func NewRepliesRepository(db *bun.DB) Replies {
	repo := repository.NewRepository[*Reply](db, repository.ModelHandlers[*Reply]{
		NewRecord: func() *Reply { return &Reply{} },
		GetID: func(r *Reply) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Reply, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &replies{
		Repository: repo,
		db:         db,
	}
}

func (a *replies) Publish(ctx context.Context, reply *Reply) (*Reply, error) {
	return a.PublishTx(ctx, a.db, reply)
}

func (a *replies) PublishTx(ctx context.Context, tx bun.IDB, reply *Reply) (*Reply, error) {
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, reply)
}

// ListByPost returns the thread in conversation order, oldest first.
func (a *replies) ListByPost(ctx context.Context, postID uuid.UUID) ([]*Reply, error) {
	records := []*Reply{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("Author").
		Where("rpl.post_id = ?", postID).
		Order("rpl.created_at ASC").
		Order("rpl.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *replies) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return a.DeleteByIDTx(ctx, a.db, id)
}

func (a *replies) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Reply)(nil)).
		Where("rpl.id = ?", id).
		Exec(ctx)
	return err
}
