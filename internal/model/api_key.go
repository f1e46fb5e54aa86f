package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// APIKeyPrefix marks bearer tokens that should be resolved against stored
// API keys instead of the identity provider.
const APIKeyPrefix = "sk_"

// DefaultAPIKeyName is the label assigned to generated keys.
const DefaultAPIKeyName = "Default API Key"

// APIKey holds the one-way hash of a user's programmatic access key. The
// unique index on UserID guarantees at most one key per user; regeneration
// upserts in place.
type APIKey struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"userId" gorm:"type:varchar(100);uniqueIndex;not null"`
	HashedKey string     `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name      string     `json:"name" gorm:"type:varchar(100);not null;default:'Default API Key'"`
	IsActive  bool       `json:"isActive" gorm:"not null;default:true"`
	LastUsed  *time.Time `json:"lastUsed,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// GenerateAPIKey returns a new secret: the key prefix followed by 32 random
// bytes hex-encoded. Only the hash of this value is ever persisted.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return APIKeyPrefix + hex.EncodeToString(buf), nil
}

// HashAPIKey returns the hex-encoded sha256 digest of the secret. The digest
// is deterministic so active keys can be looked up by hash.
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
