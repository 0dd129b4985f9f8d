package documents

import (
	"context"
	"fmt"

	"fifostock/internal/core/apperror"
	"fifostock/internal/core/numerator"
	"fifostock/internal/core/tx"
	"fifostock/internal/core/types"
	"fifostock/internal/domain"
	"fifostock/pkg/logger"
)

// HeaderService implements the header lifecycle common to purchases and sales.
type HeaderService[T Header, D any] struct {
	kind      string
	repo      HeaderRepository[T, D]
	txManager tx.Manager
	numerator numerator.Generator
	numbering numerator.Config
	attach    func(T, []D)
}

// NewHeaderService creates a header service.
// kind names the document type in logs and errors; attach stores loaded
// detail lines on a header.
func NewHeaderService[T Header, D any](
	kind string,
	repo HeaderRepository[T, D],
	txManager tx.Manager,
	gen numerator.Generator,
	numbering numerator.Config,
	attach func(T, []D),
) *HeaderService[T, D] {
	return &HeaderService[T, D]{
		kind:      kind,
		repo:      repo,
		txManager: txManager,
		numerator: gen,
		numbering: numbering,
		attach:    attach,
	}
}

// TxManager exposes the transaction manager to embedding services.
func (s *HeaderService[T, D]) TxManager() tx.Manager {
	return s.txManager
}

// Repo exposes the repository to embedding services.
func (s *HeaderService[T, D]) Repo() HeaderRepository[T, D] {
	return s.repo
}

// Create stores a new header. An empty code is drawn from the numerator.
func (s *HeaderService[T, D]) Create(ctx context.Context, doc T) error {
	d := doc.Doc()
	d.Date = types.DateOf(d.Date)

	if d.Code == "" && s.numerator != nil && !d.Date.IsZero() {
		code, err := s.numerator.Next(ctx, s.numbering, d.Date)
		if err != nil {
			return fmt.Errorf("generate %s code: %w", s.kind, err)
		}
		d.Code = code
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return err
	}

	logger.Info(ctx, s.kind+" created", "code", d.Code, "date", d.Date.Format(types.DateLayout))
	return nil
}

// Get returns a header with its detail lines.
func (s *HeaderService[T, D]) Get(ctx context.Context, code string) (T, error) {
	doc, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return doc, err
	}
	details, err := s.repo.Details(ctx, code)
	if err != nil {
		return doc, fmt.Errorf("load %s details: %w", s.kind, err)
	}
	s.attach(doc, details)
	return doc, nil
}

// List returns active headers, newest date first.
func (s *HeaderService[T, D]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	return s.repo.List(ctx, filter.Normalize())
}

// Details returns the detail lines of an active header.
func (s *HeaderService[T, D]) Details(ctx context.Context, code string) ([]D, error) {
	if _, err := s.repo.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.repo.Details(ctx, code)
}

// Update edits date and description.
// The date places every line of the document in FIFO order, so it is
// frozen once the document has lines.
func (s *HeaderService[T, D]) Update(ctx context.Context, code string, patch Patch) (T, error) {
	var updated T
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, code)
		if err != nil {
			return err
		}
		d := doc.Doc()
		if patch.Version != 0 && patch.Version != d.Version {
			return apperror.NewConcurrentModification(s.kind, code).
				WithDetail("expected_version", patch.Version).
				WithDetail("actual_version", d.Version)
		}

		if patch.Date != nil && !types.DateOf(*patch.Date).Equal(d.Date) {
			details, err := s.repo.Details(ctx, code)
			if err != nil {
				return err
			}
			if len(details) > 0 {
				return apperror.NewConflict("date of a document with details cannot change").
					WithDetail("code", code).
					WithDetail("details", len(details))
			}
			d.Date = types.DateOf(*patch.Date)
		}
		if patch.Description != nil {
			d.Description = *patch.Description
		}

		if err := doc.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		d.Touch()
		updated = doc
		return nil
	})
	return updated, err
}

// Delete soft-deletes a header. Committed lines are history, so only a
// document without lines can be deleted.
func (s *HeaderService[T, D]) Delete(ctx context.Context, code string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, code); err != nil {
			return err
		}
		details, err := s.repo.Details(ctx, code)
		if err != nil {
			return err
		}
		if len(details) > 0 {
			return apperror.NewConflict("document with details cannot be deleted").
				WithDetail("code", code).
				WithDetail("details", len(details))
		}
		return s.repo.Delete(ctx, code)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, s.kind+" deleted", "code", code)
	return nil
}
