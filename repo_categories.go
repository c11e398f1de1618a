package forum

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Categories exposes only the list surface; the generic repository methods
// stay on the concrete type so the interface does not shadow their
// criteria-based List.
type Categories interface {
	List(ctx context.Context) ([]*Category, error)
	ListTx(ctx context.Context, tx bun.IDB) ([]*Category, error)
}

type categories struct {
	repository.Repository[*Category]
	db *bun.DB
}

var _ Categories = (*categories)(nil)

func NewCategoriesRepository(db *bun.DB) Categories {
	repo := repository.NewRepository[*Category](db, repository.ModelHandlers[*Category]{
		NewRecord: func() *Category { return &Category{} },
		GetID: func(c *Category) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Category, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &categories{
		Repository: repo,
		db:         db,
	}
}

func (a *categories) List(ctx context.Context) ([]*Category, error) {
	return a.ListTx(ctx, a.db)
}

func (a *categories) ListTx(ctx context.Context, tx bun.IDB) ([]*Category, error) {
	records := []*Category{}
	err := tx.NewSelect().
		Model(&records).
		Order("cat.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
