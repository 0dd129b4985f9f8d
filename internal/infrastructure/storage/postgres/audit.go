package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "fifostock/internal/core/context"
	"fifostock/internal/core/id"
	"fifostock/internal/domain/inventory"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which entries are compressed.
const DefaultCompressThreshold = 4 * 1024

var _ inventory.AuditSink = (*AuditLog)(nil)

// AuditRecord is one stored row of sys_audit.
type AuditRecord struct {
	ID        id.ID
	RequestID string
	CreatedAt time.Time
	Entry     inventory.AuditEntry
}

// AuditLog writes inventory movements to sys_audit inside the caller's
// transaction. Large entries (sales spanning many lots) are zstd-compressed.
type AuditLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditLog creates an audit log.
func NewAuditLog(txManager *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditLog{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record implements inventory.AuditSink.
func (a *AuditLog) Record(ctx context.Context, entry inventory.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	var (
		plain      []byte
		compressed []byte
		algo       = CompressionNone
	)
	if len(payload) > a.compressThreshold {
		compressed = a.encoder.EncodeAll(payload, nil)
		algo = CompressionZstd
	} else {
		plain = payload
	}

	_, err = a.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, kind, item_code, document_code, detail_id,
			entry, entry_compressed, compression_algo, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		id.New(), entry.Kind, entry.ItemCode, entry.DocumentCode, entry.DetailID,
		plain, compressed, algo, appctx.GetRequestID(ctx), time.Now().UTC(),
	)
	return err
}

// ItemHistory returns the latest audit records of an item, newest first.
func (a *AuditLog) ItemHistory(ctx context.Context, itemCode string, limit int) ([]AuditRecord, error) {
	rows, err := a.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, request_id, created_at, entry, entry_compressed, compression_algo
		FROM sys_audit
		WHERE item_code = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, itemCode, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		var (
			rec        AuditRecord
			plain      []byte
			compressed []byte
			algo       CompressionAlgo
		)
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.CreatedAt, &plain, &compressed, &algo); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if algo == CompressionZstd {
			if plain, err = a.decoder.DecodeAll(compressed, nil); err != nil {
				return nil, fmt.Errorf("decompress audit %s: %w", rec.ID, err)
			}
		}
		if err := json.Unmarshal(plain, &rec.Entry); err != nil {
			return nil, fmt.Errorf("decode audit %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the zstd coders.
func (a *AuditLog) Close() {
	_ = a.encoder.Close()
	a.decoder.Close()
}
