package services

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// DisplayColor derives a stable #RRGGBB color from a post id. It groups posts
// visually and carries no security meaning.
func DisplayColor(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return fmt.Sprintf("#%02X%02X%02X", sum[0], sum[1], sum[2])
}

// Truncate cuts s to at most limit characters. The message is stored
// HTML-escaped, so a cut that would land inside an entity drops the partial
// entity as well.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 {
		return s, false
	}
	count := 0
	for i := range s {
		if count == limit {
			cut := s[:i]
			if amp := strings.LastIndexByte(cut, '&'); amp >= 0 && !strings.Contains(cut[amp:], ";") {
				cut = cut[:amp]
			}
			return cut, true
		}
		count++
	}
	return s, false
}
