// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resources

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"code.hybscloud.com/kontrt"
)

// Postgres returns a layer providing a pgx connection pool under tag.
// The pool connects lazily; a malformed dsn fails the build.
func Postgres(tag *kontrt.Tag[*pgxpool.Pool], dsn string) kontrt.Layer {
	return kontrt.Scoped(tag,
		func(ctx context.Context, _ kontrt.Context) (*pgxpool.Pool, error) {
			pool, err := pgxpool.New(ctx, dsn)
			if err != nil {
				return nil, fmt.Errorf("postgres: %w", err)
			}
			return pool, nil
		},
		func(pool *pgxpool.Pool) error {
			pool.Close()
			return nil
		},
	)
}

// Exec runs a statement and succeeds with the number of affected rows.
func Exec(tag *kontrt.Tag[*pgxpool.Pool], sql string, args ...any) kontrt.Effect[int64] {
	return kontrt.Use(tag, func(pool *pgxpool.Pool) kontrt.Effect[int64] {
		return kontrt.Async(func(ctx context.Context) (int64, error) {
			ct, err := pool.Exec(ctx, sql, args...)
			if err != nil {
				return 0, err
			}
			return ct.RowsAffected(), nil
		})
	})
}

// Query runs a query and collects its rows into T by column name.
func Query[T any](tag *kontrt.Tag[*pgxpool.Pool], sql string, args ...any) kontrt.Effect[[]T] {
	return kontrt.Use(tag, func(pool *pgxpool.Pool) kontrt.Effect[[]T] {
		return kontrt.Async(func(ctx context.Context) ([]T, error) {
			rows, err := pool.Query(ctx, sql, args...)
			if err != nil {
				return nil, err
			}
			return pgx.CollectRows(rows, pgx.RowToStructByName[T])
		})
	})
}
