package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ResponseKey identifies a cached GET response by its path and raw query.
func ResponseKey(path, rawQuery string) string {
	sum := sha256.Sum256([]byte(path + "?" + rawQuery))
	return fmt.Sprintf("resp:%s", hex.EncodeToString(sum[:16]))
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
