package forum

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Posts interface {
	repository.Repository[*Post]

	Publish(ctx context.Context, post *Post) (*Post, error)
	PublishTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Post, error)
	GetWithAuthor(ctx context.Context, id uuid.UUID) (*Post, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type posts struct {
	repository.Repository[*Post]
	db *bun.DB
}

var _ Posts = (*posts)(nil)

func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &posts{
		Repository: repo,
		db:         db,
	}
}

func (a *posts) Publish(ctx context.Context, post *Post) (*Post, error) {
	return a.PublishTx(ctx, a.db, post)
}

func (a *posts) PublishTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, post)
}

// ListByCategory returns the category feed, newest first, author loaded.
func (a *posts) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Post, error) {
	records := []*Post{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("Author").
		Where("pst.category_id = ?", categoryID).
		Order("pst.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *posts) GetWithAuthor(ctx context.Context, id uuid.UUID) (*Post, error) {
	record := &Post{}
	err := a.db.NewSelect().
		Model(record).
		Relation("Author").
		Where("pst.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}
	return record, nil
}

func (a *posts) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return a.DeleteByIDTx(ctx, a.db, id)
}

// DeleteByIDTx removes the post and its replies. Hard delete, moderation is
// not an archive.
func (a *posts) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*Reply)(nil)).
		Where("rpl.post_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	_, err := tx.NewDelete().
		Model((*Post)(nil)).
		Where("pst.id = ?", id).
		Exec(ctx)
	return err
}
