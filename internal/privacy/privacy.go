// internal/privacy/privacy.go
package privacy

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"lifestyle-insights/internal/insights"
	"lifestyle-insights/internal/models"
)

// EncryptedData is an AES-256-CBC envelope for serialized user data.
type EncryptedData struct {
	Ciphertext string `json:"ciphertext"` // base64
	IV         string `json:"iv"`         // base64
	Algorithm  string `json:"algorithm"`
}

// DataExport bundles everything stored for one user.
type DataExport struct {
	UserID     string                   `json:"user_id"`
	ExportedAt time.Time                `json:"exported_at"`
	Records    []models.LifestyleRecord `json:"records"`
	Insights   []insights.Insight       `json:"insights"`
}

// DeletionConfirmation reports the outcome of a user data deletion.
type DeletionConfirmation struct {
	UserID          string    `json:"user_id"`
	DeletedAt       time.Time `json:"deleted_at"`
	RecordsDeleted  int       `json:"records_deleted"`
	InsightsDeleted int       `json:"insights_deleted"`
}

// Store is the persistence surface the controller needs for export and
// deletion.
type Store interface {
	RecordsForUser(ctx context.Context, userID string) ([]models.LifestyleRecord, error)
	InsightsForUser(ctx context.Context, userID string) ([]insights.Insight, error)
	DeleteUser(ctx context.Context, userID string) (recordsDeleted, insightsDeleted int, err error)
}

// Controller handles encryption at rest, data export, and deletion on
// request.
type Controller struct {
	key   []byte
	store Store
}

// NewController builds a controller with a 32-byte AES-256 key. A nil key
// generates a random one, suitable only for single-process use.
func NewController(key []byte, store Store) (*Controller, error) {
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, models.NewSystemError(
				"could not initialize encryption",
				"Retry, or supply an explicit 32-byte key.", err)
		}
	}
	if len(key) != 32 {
		return nil, models.NewValidationError(
			"encryption_key",
			fmt.Sprintf("encryption key must be 32 bytes for AES-256, got %d", len(key)),
			"Supply a 32-byte key.")
	}
	return &Controller{key: key, store: store}, nil
}

// Encrypt serializes v to JSON and encrypts it with AES-256-CBC under a
// fresh random IV.
func (c *Controller) Encrypt(v interface{}) (EncryptedData, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return EncryptedData{}, models.NewSystemError(
			"could not serialize data for encryption", "Report this problem.", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return EncryptedData{}, models.NewSystemError(
			"could not initialize cipher", "Report this problem.", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return EncryptedData{}, models.NewSystemError(
			"could not generate initialization vector", "Retry the operation.", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return EncryptedData{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
		Algorithm:  "AES-256-CBC",
	}, nil
}

// Decrypt reverses Encrypt into v.
func (c *Controller) Decrypt(data EncryptedData, v interface{}) error {
	ciphertext, err := base64.StdEncoding.DecodeString(data.Ciphertext)
	if err != nil {
		return models.NewValidationError(
			"ciphertext", "ciphertext is not valid base64", "Supply data produced by Encrypt.")
	}
	iv, err := base64.StdEncoding.DecodeString(data.IV)
	if err != nil || len(iv) != aes.BlockSize {
		return models.NewValidationError(
			"iv", "initialization vector is invalid", "Supply data produced by Encrypt.")
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return models.NewValidationError(
			"ciphertext", "ciphertext length is not a multiple of the block size", "Supply data produced by Encrypt.")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return models.NewSystemError("could not initialize cipher", "Report this problem.", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return models.NewValidationError(
			"ciphertext", "decryption produced invalid padding", "Check that the key matches the one used to encrypt.")
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return models.NewSystemError("could not deserialize decrypted data", "Report this problem.", err)
	}
	return nil
}

// ExportUserData gathers everything stored for a user into one bundle.
func (c *Controller) ExportUserData(ctx context.Context, userID string) (DataExport, error) {
	if userID == "" {
		return DataExport{}, models.NewValidationError(
			"user_id", "user ID is required for export", "Supply the user ID to export.")
	}

	records, err := c.store.RecordsForUser(ctx, userID)
	if err != nil {
		return DataExport{}, models.NewSystemError(
			"could not load records for export", "Try again shortly.", err)
	}
	userInsights, err := c.store.InsightsForUser(ctx, userID)
	if err != nil {
		return DataExport{}, models.NewSystemError(
			"could not load insights for export", "Try again shortly.", err)
	}

	return DataExport{
		UserID:     userID,
		ExportedAt: time.Now().UTC(),
		Records:    records,
		Insights:   userInsights,
	}, nil
}

// DeleteUserData removes all stored data for a user and confirms the counts.
func (c *Controller) DeleteUserData(ctx context.Context, userID string) (DeletionConfirmation, error) {
	if userID == "" {
		return DeletionConfirmation{}, models.NewValidationError(
			"user_id", "user ID is required for deletion", "Supply the user ID to delete.")
	}

	records, insightsDeleted, err := c.store.DeleteUser(ctx, userID)
	if err != nil {
		return DeletionConfirmation{}, models.NewSystemError(
			"could not delete user data", "Try again shortly.", err)
	}

	return DeletionConfirmation{
		UserID:          userID,
		DeletedAt:       time.Now().UTC(),
		RecordsDeleted:  records,
		InsightsDeleted: insightsDeleted,
	}, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padding], nil
}
