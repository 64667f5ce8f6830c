package media

import (
	"mime"
	"path/filepath"
)

// contentTypeFor guesses a Content-Type from the stored file name.
func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
