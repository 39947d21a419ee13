package cache

import (
	"encoding/hex"

	"github.com/minio/highwayhash"
)

// hashKey seeds Hash. Changing it orphans every existing cache entry.
var hashKey = []byte("exprgraph-artifact-cache-key-v01")

// Hash computes a 128-bit HighwayHash of data as 32 hex characters.
func Hash(data []byte) string {
	sum := highwayhash.Sum128(data, hashKey)
	return hex.EncodeToString(sum[:])
}
