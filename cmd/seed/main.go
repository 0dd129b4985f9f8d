// Package main provides a CLI tool for seeding the database with demo fixtures.
// Every line goes through the recording services, so lots and ledgers stay consistent.
package main

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"fifostock/internal/app"
	"fifostock/internal/core/apperror"
	"fifostock/internal/domain/catalogs/item"
	"fifostock/internal/domain/documents/purchase"
	"fifostock/internal/domain/documents/sale"
	"fifostock/pkg/logger"
)

const (
	itemCount     = 100
	documentCount = 50
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	a, err := app.New(ctx, app.Config{DatabaseURL: dbURL, MaxConns: 4, Migrate: true})
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer a.Close()

	log.Info("connected to database")

	s := &seeder{app: a, log: log, rnd: rand.New(rand.NewPCG(2024, 2025))}

	if err := s.seedItems(ctx); err != nil {
		log.Fatalw("failed to seed items", "error", err)
	}
	docs, err := s.seedHeaders(ctx)
	if err != nil {
		log.Fatalw("failed to seed documents", "error", err)
	}
	if err := s.seedLines(ctx, docs); err != nil {
		log.Fatalw("failed to seed lines", "error", err)
	}

	log.Infow("seeding completed successfully",
		"items", s.items, "documents", len(docs), "lines", s.lines, "skipped_lines", s.skipped)
}

type seeder struct {
	app *app.App
	log *logger.Logger
	rnd *rand.Rand

	items, lines, skipped int
}

// document is a freshly created header and the lines it will receive.
type document struct {
	code  string
	date  time.Time
	sale  bool
	lines []line
}

type line struct {
	item      string
	quantity  decimal.Decimal
	unitPrice decimal.Decimal
}

// randomDate picks a day in 2024-2025. The fixed PCG seed keeps reruns identical.
func (s *seeder) randomDate() time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, 0, s.rnd.IntN(731))
}

func itemCode(n int) string {
	return fmt.Sprintf("ITEM%03d", n)
}

func (s *seeder) seedItems(ctx context.Context) error {
	for i := 1; i <= itemCount; i++ {
		code := itemCode(i)
		it := item.NewItem(code, "Product "+code, "unit", "Test product "+code)
		err := s.app.Items.Create(ctx, it)
		if apperror.IsDuplicate(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create item %s: %w", code, err)
		}
		s.items++
	}
	return nil
}

// seedHeaders creates purchase orders PO001.. with three lines each and sales
// orders SO001.. with two. Headers that already exist are left alone.
func (s *seeder) seedHeaders(ctx context.Context) ([]document, error) {
	var docs []document
	for n := 1; n <= documentCount; n++ {
		doc := document{code: fmt.Sprintf("PO%03d", n), date: s.randomDate()}
		for detail := 1; detail <= 3; detail++ {
			doc.lines = append(doc.lines, line{
				item:      itemCode((n*3+detail)%97 + 4),
				quantity:  decimal.NewFromInt(int64(detail * 5)),
				unitPrice: decimal.NewFromInt(int64(50 + detail*10)),
			})
		}
		err := s.app.Purchases.Create(ctx, purchase.NewPurchase(doc.code, doc.date, "Purchase order "+doc.code))
		if apperror.IsDuplicate(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create purchase %s: %w", doc.code, err)
		}
		docs = append(docs, doc)
	}

	for n := 1; n <= documentCount; n++ {
		doc := document{code: fmt.Sprintf("SO%03d", n), date: s.randomDate(), sale: true}
		for detail := 1; detail <= 2; detail++ {
			doc.lines = append(doc.lines, line{
				item:     itemCode((n*2+detail)%97 + 4),
				quantity: decimal.NewFromInt(int64(detail)),
			})
		}
		err := s.app.Sales.Create(ctx, sale.NewSale(doc.code, doc.date, "Sales order "+doc.code))
		if apperror.IsDuplicate(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create sale %s: %w", doc.code, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// seedLines records the lines in history order, so no item ever receives a
// movement dated before its latest one. Sales the stock cannot cover, and
// lines landing before history recorded by an earlier run, are skipped.
func (s *seeder) seedLines(ctx context.Context, docs []document) error {
	slices.SortStableFunc(docs, func(a, b document) int {
		if c := a.date.Compare(b.date); c != 0 {
			return c
		}
		return cmp.Compare(a.code, b.code)
	})

	for _, doc := range docs {
		for i, l := range doc.lines {
			var err error
			if doc.sale {
				_, err = s.app.Sales.AddDetail(ctx, doc.code, sale.Line{ItemCode: l.item, Quantity: l.quantity})
			} else {
				_, err = s.app.Purchases.AddDetail(ctx, doc.code, purchase.Line{
					ItemCode: l.item, Quantity: l.quantity, UnitPrice: l.unitPrice,
				})
			}
			if apperror.IsInsufficientStock(err) || apperror.IsConflict(err) {
				s.log.Debugw("skipping line", "document", doc.code, "item", l.item, "error", err)
				s.skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("%s line %d: %w", doc.code, i+1, err)
			}
			s.lines++
		}
	}
	return nil
}
