// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fifostock/internal/core/apperror"
	"fifostock/internal/domain"
	"fifostock/internal/domain/documents"
	"fifostock/internal/infrastructure/storage/postgres"
)

// DetailTable describes where the lines of a document live.
type DetailTable struct {
	Name      string
	DocColumn string
	Columns   []string
	OrderBy   []string
}

// DefaultLockTimeout bounds how long GetForUpdate and GetForShare wait for a
// header row.
const DefaultLockTimeout = 5 * time.Second

// BaseDocumentRepo implements documents.HeaderRepository for one header
// table and its detail table.
type BaseDocumentRepo[T documents.Header, D any] struct {
	txManager  *postgres.TxManager
	entity     string
	tableName  string
	selectCols []string
	details    DetailTable
	newFn      func() T

	lockTimeout time.Duration
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T documents.Header, D any](
	txManager *postgres.TxManager,
	entity string,
	tableName string,
	selectCols []string,
	details DetailTable,
	newFn func() T,
) *BaseDocumentRepo[T, D] {
	return &BaseDocumentRepo[T, D]{
		txManager:  txManager,
		entity:     entity,
		tableName:  tableName,
		selectCols: selectCols,
		details:    details,
		newFn:      newFn,

		lockTimeout: DefaultLockTimeout,
	}
}

// SetLockTimeout changes how long header locks wait. Zero keeps the current value.
func (r *BaseDocumentRepo[T, D]) SetLockTimeout(d time.Duration) {
	if d > 0 {
		r.lockTimeout = d
	}
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo[T, D]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseDocumentRepo[T, D]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new header.
func (r *BaseDocumentRepo[T, D]) Create(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
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

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.PgCode(err) == postgres.CodeUniqueViolation {
			return apperror.NewDuplicate(r.entity, "code", doc.Doc().Code).WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// Update writes date and description with optimistic locking.
func (r *BaseDocumentRepo[T, D]) Update(ctx context.Context, doc T) error {
	d := doc.Doc()
	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("date", d.Date).
		Set("description", d.Description).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"code": d.Code, "version": d.Version, "deletion_mark": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, postgres.MapError(err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entity, d.Code).
			WithDetail("expected_version", d.Version)
	}
	return nil
}

// GetByCode retrieves an active header.
func (r *BaseDocumentRepo[T, D]) GetByCode(ctx context.Context, code string) (T, error) {
	return r.get(ctx, code, "")
}

// GetForUpdate retrieves an active header and locks its row.
func (r *BaseDocumentRepo[T, D]) GetForUpdate(ctx context.Context, code string) (T, error) {
	return r.lock(ctx, code, "FOR UPDATE")
}

// GetForShare retrieves an active header and share-locks its row: updates and
// deletes wait, other share holders do not.
func (r *BaseDocumentRepo[T, D]) GetForShare(ctx context.Context, code string) (T, error) {
	return r.lock(ctx, code, "FOR SHARE")
}

func (r *BaseDocumentRepo[T, D]) lock(ctx context.Context, code, mode string) (T, error) {
	if err := r.txManager.SetLockTimeout(ctx, r.lockTimeout); err != nil {
		var zero T
		return zero, err
	}
	return r.get(ctx, code, mode)
}

func (r *BaseDocumentRepo[T, D]) getQuery(code, suffix string) squirrel.SelectBuilder {
	q := r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"code": code, "deletion_mark": false})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	return q
}

func (r *BaseDocumentRepo[T, D]) get(ctx context.Context, code, suffix string) (T, error) {
	doc := r.newFn()

	sql, args, err := r.getQuery(code, suffix).ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.entity, code)
		}
		if suffix == "" {
			return doc, postgres.MapError(err)
		}
		return doc, postgres.ContentionOrError(err, code)
	}
	return doc, nil
}

// Delete soft-deletes a header.
func (r *BaseDocumentRepo[T, D]) Delete(ctx context.Context, code string) error {
	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"code": code, "deletion_mark": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, code)
	}
	return nil
}

// listQuery builds the filtered header query.
func (r *BaseDocumentRepo[T, D]) listQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.Builder().Select(r.selectCols...).From(r.tableName)
	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(filter.Search) + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	return q
}

// List returns headers, newest date first.
func (r *BaseDocumentRepo[T, D]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
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
	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	sql, args, err := q.OrderBy("date DESC", "code DESC").
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

// detailsQuery selects the lines of one document.
func (r *BaseDocumentRepo[T, D]) detailsQuery(code string) squirrel.SelectBuilder {
	return r.Builder().
		Select(r.details.Columns...).
		From(r.details.Name).
		Where(squirrel.Eq{r.details.DocColumn: code}).
		OrderBy(r.details.OrderBy...)
}

// Details returns the lines of a document in creation order.
func (r *BaseDocumentRepo[T, D]) Details(ctx context.Context, code string) ([]D, error) {
	sql, args, err := r.detailsQuery(code).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build details query: %w", err)
	}

	var out []D
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("load %s details: %w", r.entity, err)
	}
	return out, nil
}
