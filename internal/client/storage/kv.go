package storage

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mediguard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mediguard/internal/dbx"
)

// KV groups metadata writes into transactions so related keys change
// together.
type KV struct {
	db *sql.DB
}

func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	return metadata.NewSQLiteRepository(s.db).Get(ctx, key)
}

// SetMany writes all values or none.
func (s *KV) SetMany(ctx context.Context, values map[string][]byte) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for k, v := range values {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteMany removes all keys in one statement. Absent keys are ignored.
func (s *KV) DeleteMany(ctx context.Context, keys ...string) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, keys...)
}
