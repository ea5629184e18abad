package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxExtLength = 16

// GenerateName returns a storage name for an upload: <unix-millis>-<random><ext>.
// Only the extension is taken from the original name. Uniqueness comes from the
// random part, so concurrent uploads need no coordination.
func GenerateName(originalName string) string {
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), random, extension(originalName))
}

// extension returns the lowercased extension of the base name, restricted to [a-z0-9]
func extension(originalName string) string {
	// Windows clients may send full paths
	name := originalName[strings.LastIndexAny(originalName, `/\`)+1:]

	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > maxExtLength+1 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
