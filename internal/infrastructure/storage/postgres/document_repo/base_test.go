package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifostock/internal/domain"
)

func TestPurchaseDetailsQuery(t *testing.T) {
	sql, args, err := NewPurchaseRepo(nil).detailsQuery("PUR-1").ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, purchase_code, date, item_code, quantity, unit_price, remaining_quantity, created_at "+
			"FROM doc_purchase_lots WHERE purchase_code = $1 ORDER BY id", sql)
	assert.Equal(t, []any{"PUR-1"}, args)
}

func TestSaleListQuery(t *testing.T) {
	sql, args, err := NewSaleRepo(nil).listQuery(domain.ListFilter{Search: "may"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT deletion_mark, version, created_at, updated_at, code, date, description "+
			"FROM doc_sales WHERE deletion_mark = $1 AND (code ILIKE $2 OR description ILIKE $3)", sql)
	assert.Equal(t, []any{false, "%may%", "%may%"}, args)
}

func TestHeaderLockQuery(t *testing.T) {
	tests := []struct {
		name    string
		suffix  string
		wantSQL string
	}{
		{"plain", "", "SELECT deletion_mark, version, created_at, updated_at, code, date, description FROM doc_purchases WHERE code = $1 AND deletion_mark = $2"},
		{"exclusive", "FOR UPDATE", "SELECT deletion_mark, version, created_at, updated_at, code, date, description FROM doc_purchases WHERE code = $1 AND deletion_mark = $2 FOR UPDATE"},
		{"shared", "FOR SHARE", "SELECT deletion_mark, version, created_at, updated_at, code, date, description FROM doc_purchases WHERE code = $1 AND deletion_mark = $2 FOR SHARE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := NewPurchaseRepo(nil).getQuery("PUR-1", tt.suffix).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, []any{"PUR-1", false}, args)
		})
	}
}

func TestSetLockTimeout(t *testing.T) {
	repo := NewSaleRepo(nil)
	assert.Equal(t, DefaultLockTimeout, repo.lockTimeout)

	repo.SetLockTimeout(0)
	assert.Equal(t, DefaultLockTimeout, repo.lockTimeout)

	repo.SetLockTimeout(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, repo.lockTimeout)
}
