package object

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
)

// HashOwner returns a path-safe namespace for an owner id, so keys never
// carry raw user identifiers.
func HashOwner(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])
}

// SanitizeSegment strips path separators from a single key segment and
// rejects traversal patterns.
func SanitizeSegment(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidKey
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", ErrInvalidKey
	}
	return s, nil
}

// VideoKey builds videos/<owner hash>/<videoID>.mp4.
func VideoKey(ownerID, videoID string) (string, error) {
	name, err := SanitizeSegment(videoID)
	if err != nil {
		return "", err
	}
	return path.Join("videos", HashOwner(ownerID), name+".mp4"), nil
}
