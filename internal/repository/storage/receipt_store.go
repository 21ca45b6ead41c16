package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ReceiptStore defines the interface for receipt object storage
type ReceiptStore interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ReceiptKey creates a unique object key for a transaction's receipt
func ReceiptKey(userID uuid.UUID, transactionID int32, ext string) string {
	return path.Join(userID.String(), "receipts", fmt.Sprintf("%d_%s%s", transactionID, uuid.New().String(), ext))
}
