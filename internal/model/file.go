package model

import (
	"time"
)

type File struct {
	ID           int64     `db:"id" json:"id"`
	StorageName  string    `db:"storage_name" json:"storageName"`   // Generated blob key, never user input
	OriginalName string    `db:"original_name" json:"originalName"` // As uploaded, may collide across records
	MimeType     string    `db:"mime_type" json:"mimeType"`         // Declared at upload time
	Size         int64     `db:"size" json:"size"`
	StoragePath  string    `db:"storage_path" json:"-"` // Only the storage layer reads this
	UploadedAt   time.Time `db:"uploaded_at" json:"uploadedAt"`
}
