package entity

import (
	"github.com/google/uuid"
)

// PendingPage is one source page waiting for recognition. Its position is its
// index in the batch and is never stored on the page.
type PendingPage struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	ByteSize    int64     `json:"byte_size"`
	Content     []byte    `json:"-"`
}

// SizeKB is the page size in kilobytes, for display.
func (p PendingPage) SizeKB() float64 {
	return float64(p.ByteSize) / 1024
}

// EncodedPage is the wire form of a page sent to the OCR service.
type EncodedPage struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64, no data-URL prefix
}
