// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain"
	"fifostock/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides the code-addressed CRUD shared by catalogs.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T any] struct {
	txManager  *postgres.TxManager
	entity     string
	tableName  string
	selectCols []string
	newFn      func() T
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T any](
	txManager *postgres.TxManager,
	entity string,
	tableName string,
	selectCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		entity:     entity,
		tableName:  tableName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the transaction of ctx, or the pool.
func (r *BaseCatalogRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %s", r.entity)
	}

	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.PgCode(err) == postgres.CodeUniqueViolation {
			return apperror.NewDuplicate(r.entity, "code", fmt.Sprint(data["code"])).WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// UpdateColumns writes cols of an entity addressed by code, with optimistic locking.
func (r *BaseCatalogRepo[T]) UpdateColumns(ctx context.Context, entity T, cols ...string) error {
	data := postgres.StructToMap(entity)
	code, _ := data["code"].(string)
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("%s has no int version", r.entity)
	}

	q := r.Builder().
		Update(r.tableName).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"code": code, "version": version, "deletion_mark": false})
	for _, col := range cols {
		q = q.Set(col, data[col])
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, postgres.MapError(err))
	}
	if result.RowsAffected() == 0 {
		// Either gone or changed underneath us.
		if _, getErr := r.GetByCode(ctx, code); getErr != nil {
			return getErr
		}
		return apperror.NewConcurrentModification(r.entity, code).
			WithDetail("expected_version", version)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByCode retrieves an active entity by code.
func (r *BaseCatalogRepo[T]) GetByCode(ctx context.Context, code string) (T, error) {
	return r.findByCode(ctx, code, "")
}

// GetForUpdate retrieves an active entity by code and locks its row.
func (r *BaseCatalogRepo[T]) GetForUpdate(ctx context.Context, code string) (T, error) {
	return r.findByCode(ctx, code, "FOR UPDATE")
}

func (r *BaseCatalogRepo[T]) findByCode(ctx context.Context, code, suffix string) (T, error) {
	entity := r.newFn()

	q := r.baseSelect().
		Where(squirrel.Eq{"code": code, "deletion_mark": false}).
		Limit(1)
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entity, code)
		}
		return entity, postgres.ContentionOrError(err, code)
	}
	return entity, nil
}

// listQuery builds the filtered query shared by List and its count.
func (r *BaseCatalogRepo[T]) listQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()
	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"name": pattern},
		})
	}
	return q
}

// List retrieves entities ordered by code with pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter = filter.Normalize()
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.listQuery(filter)

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	sql, args, err := q.OrderBy("code ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

// SetDeletionMark soft-deletes an active entity.
func (r *BaseCatalogRepo[T]) SetDeletionMark(ctx context.Context, code string) error {
	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"code": code, "deletion_mark": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute set deletion mark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, code)
	}
	return nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
