package cache

import (
	"fmt"
	"strconv"
	"time"
)

// Fingerprint derives the cache key from a file's name, byte size and
// last-modified time via a 32-bit rolling hash, base-36 encoded. It is
// a cheap identity proxy, not a content hash: two files with identical
// name, size and mtime collide by design.
func Fingerprint(fileName string, size int64, lastModified time.Time) string {
	seed := fmt.Sprintf("%s|%d|%d", fileName, size, lastModified.UnixMilli())

	var h uint32
	for i := 0; i < len(seed); i++ {
		h = h*31 + uint32(seed[i])
	}
	return strconv.FormatUint(uint64(h), 36)
}
