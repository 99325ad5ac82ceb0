// internal/privacy/privacy_test.go
package privacy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifestyle-insights/internal/insights"
	"lifestyle-insights/internal/models"
)

type fakeStore struct {
	records  []models.LifestyleRecord
	insights []insights.Insight
	err      error
}

func (f *fakeStore) RecordsForUser(ctx context.Context, userID string) ([]models.LifestyleRecord, error) {
	return f.records, f.err
}

func (f *fakeStore) InsightsForUser(ctx context.Context, userID string) ([]insights.Insight, error) {
	return f.insights, f.err
}

func (f *fakeStore) DeleteUser(ctx context.Context, userID string) (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return len(f.records), len(f.insights), nil
}

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestNewControllerKeySize(t *testing.T) {
	_, err := NewController([]byte("too short"), &fakeStore{})
	require.Error(t, err)

	var analysisErr *models.Error
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, models.KindValidation, analysisErr.Kind)

	c, err := NewController(nil, &fakeStore{})
	require.NoError(t, err, "nil key generates a random one")
	require.NotNil(t, c)

	c, err = NewController(testKey(), &fakeStore{})
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	c, err := NewController(testKey(), &fakeStore{})
	require.NoError(t, err)

	original := map[string]interface{}{
		"user_id": "u1",
		"notes":   "late dinner, poor sleep",
	}

	encrypted, err := c.Encrypt(original)
	require.NoError(t, err)
	assert.Equal(t, "AES-256-CBC", encrypted.Algorithm)
	assert.NotEmpty(t, encrypted.Ciphertext)
	assert.NotEmpty(t, encrypted.IV)
	assert.NotContains(t, encrypted.Ciphertext, "late dinner")

	var decrypted map[string]interface{}
	require.NoError(t, c.Decrypt(encrypted, &decrypted))
	assert.Equal(t, "u1", decrypted["user_id"])
	assert.Equal(t, "late dinner, poor sleep", decrypted["notes"])
}

func TestDecryptWithWrongKey(t *testing.T) {
	c1, err := NewController(testKey(), &fakeStore{})
	require.NoError(t, err)
	c2, err := NewController([]byte("ffffffffffffffffffffffffffffffff"), &fakeStore{})
	require.NoError(t, err)

	encrypted, err := c1.Encrypt(map[string]string{"a": "b"})
	require.NoError(t, err)

	var out map[string]string
	assert.Error(t, c2.Decrypt(encrypted, &out))
}

func TestEncryptFreshIVPerCall(t *testing.T) {
	c, err := NewController(testKey(), &fakeStore{})
	require.NoError(t, err)

	first, err := c.Encrypt("same payload")
	require.NoError(t, err)
	second, err := c.Encrypt("same payload")
	require.NoError(t, err)

	assert.NotEqual(t, first.IV, second.IV)
	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
}

func TestExportUserData(t *testing.T) {
	store := &fakeStore{
		records:  []models.LifestyleRecord{{ID: "r1", UserID: "u1", Timestamp: time.Now()}},
		insights: []insights.Insight{{Title: "Sleep Quality Insight", Category: "Sleep & Recovery"}},
	}
	c, err := NewController(testKey(), store)
	require.NoError(t, err)

	export, err := c.ExportUserData(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", export.UserID)
	assert.Len(t, export.Records, 1)
	assert.Len(t, export.Insights, 1)
	assert.False(t, export.ExportedAt.IsZero())

	_, err = c.ExportUserData(context.Background(), "")
	require.Error(t, err)
}

func TestDeleteUserData(t *testing.T) {
	store := &fakeStore{
		records:  make([]models.LifestyleRecord, 3),
		insights: make([]insights.Insight, 2),
	}
	c, err := NewController(testKey(), store)
	require.NoError(t, err)

	confirmation, err := c.DeleteUserData(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", confirmation.UserID)
	assert.Equal(t, 3, confirmation.RecordsDeleted)
	assert.Equal(t, 2, confirmation.InsightsDeleted)

	_, err = c.DeleteUserData(context.Background(), "")
	require.Error(t, err)
}

func TestStoreFailureIsSystemError(t *testing.T) {
	store := &fakeStore{err: errors.New("disk failure")}
	c, err := NewController(testKey(), store)
	require.NoError(t, err)

	_, err = c.ExportUserData(context.Background(), "u1")
	require.Error(t, err)

	var analysisErr *models.Error
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, models.KindSystem, analysisErr.Kind)
	assert.NotContains(t, analysisErr.Message, "disk failure")
}
