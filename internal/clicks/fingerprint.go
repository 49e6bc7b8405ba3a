package clicks

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// BuildFingerprint creates a privacy-first visitor identifier scoped to one
// profile. The value rotates daily at midnight UTC, so visitors cannot be
// tracked across days. IP addresses are never stored, only hashed.
func BuildFingerprint(profileID uint, ipAddress, userAgent, salt string) string {
	today := time.Now().UTC().Format("2006-01-02")
	dailySalt := fmt.Sprintf("%s-%s", today, salt)
	data := fmt.Sprintf("%s.%d.%s.%s", dailySalt, profileID, ipAddress, userAgent)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
