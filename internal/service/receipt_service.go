package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bajeti/bajeti-backend/internal/domain"
	"github.com/bajeti/bajeti-backend/internal/repository/storage"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	ReceiptMaxWidth  = 1200
	ReceiptQuality   = 85
	ReceiptURLExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge        = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptFormat   = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrInvalidReceiptData     = errors.New("invalid image data")
	ErrReceiptStorageDisabled = errors.New("receipt storage not configured")
)

// allowedReceiptExtensions maps extensions to content types
var allowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptService attaches receipt images to transactions. Images are
// normalized to bounded JPEGs before upload.
type ReceiptService struct {
	transactionRepo domain.TransactionRepository
	store           storage.ReceiptStore
}

// NewReceiptService creates a new ReceiptService. A nil store disables
// receipt endpoints.
func NewReceiptService(transactionRepo domain.TransactionRepository, store storage.ReceiptStore) *ReceiptService {
	return &ReceiptService{
		transactionRepo: transactionRepo,
		store:           store,
	}
}

// IsEnabled indicates whether receipt storage is configured
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// AttachReceipt validates, normalizes and uploads a receipt image for a
// transaction, replacing any previous receipt
func (s *ReceiptService) AttachReceipt(ctx context.Context, userID uuid.UUID, transactionID int32, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrReceiptStorageDisabled
	}

	transaction, err := s.transactionRepo.GetByID(userID, transactionID)
	if err != nil {
		return "", err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return "", err
	}

	if img.Bounds().Dx() > ReceiptMaxWidth {
		img = imaging.Resize(img, ReceiptMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: ReceiptQuality}); err != nil {
		return "", ErrInvalidReceiptData
	}

	key := storage.ReceiptKey(userID, transactionID, ".jpg")
	if _, err := s.store.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
		return "", err
	}

	if err := s.transactionRepo.SetReceiptKey(userID, transactionID, &key); err != nil {
		// Orphaned object; remove it so storage stays consistent
		_ = s.store.Delete(ctx, key)
		return "", err
	}

	if transaction.ReceiptKey != nil {
		if err := s.store.Delete(ctx, *transaction.ReceiptKey); err != nil {
			log.Warn().Err(err).Str("key", *transaction.ReceiptKey).Msg("Failed to delete replaced receipt")
		}
	}

	return s.store.PresignedURL(ctx, key, ReceiptURLExpiry)
}

// GetReceiptURL returns a short-lived URL for a transaction's receipt
func (s *ReceiptService) GetReceiptURL(ctx context.Context, userID uuid.UUID, transactionID int32) (string, error) {
	if !s.IsEnabled() {
		return "", ErrReceiptStorageDisabled
	}

	transaction, err := s.transactionRepo.GetByID(userID, transactionID)
	if err != nil {
		return "", err
	}
	if transaction.ReceiptKey == nil {
		return "", domain.ErrReceiptNotFound
	}

	return s.store.PresignedURL(ctx, *transaction.ReceiptKey, ReceiptURLExpiry)
}

func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedReceiptExtensions[ext]; !ok {
		return nil, ErrInvalidReceiptFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	return img, nil
}
