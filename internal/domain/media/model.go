package media

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("media file not found")

// File is the metadata row for one stored blob. Path is the public URL
// path the file is served under; StoredName is the on-disk name.
type File struct {
	ID         int64     `json:"id"`
	PatientID  *int64    `json:"patient_id"`
	Path       string    `json:"path"`
	StoredName string    `json:"-"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// kindOf buckets an allowed extension into a coarse media kind.
func kindOf(ext string) string {
	switch ext {
	case ".png", ".jpg", ".jpeg":
		return "image"
	case ".mp3", ".wav":
		return "audio"
	case ".mp4", ".webm":
		return "video"
	default:
		return "file"
	}
}
