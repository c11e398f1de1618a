package forum

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateSchema brings the store up to the shape the repositories expect.
// Tables are created only when absent so restarting against an existing
// database is safe.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Category)(nil),
		(*Post)(nil),
		(*Reply)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create schema")
		}
	}

	return nil
}

// SeedCategories inserts the configured category names, skipping any that
// already exist.
func SeedCategories(ctx context.Context, db *bun.DB, names []string) error {
	for _, name := range names {
		exists, err := db.NewSelect().
			Model((*Category)(nil)).
			Where("cat.name = ?", name).
			Exists(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check category")
		}

		if exists {
			continue
		}

		record := &Category{ID: uuid.New(), Name: name}
		if _, err := db.NewInsert().Model(record).Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to seed category")
		}
	}

	return nil
}
