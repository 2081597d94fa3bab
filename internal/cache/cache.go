package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for answer caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// AnswerKey generates a cache key for one (image, prompt) question. The
// rendered question is part of the key so prompt wording changes invalidate
// stale answers.
func AnswerKey(imageName, promptID, question string) string {
	hash := sha256.Sum256([]byte(imageName + "|" + promptID + "|" + question))
	return "crystalverify:v1:" + hex.EncodeToString(hash[:])
}
