package ogcard

import "github.com/eringen/ogcard/og"

// OGImage is an uploaded card recorded in SQLite.
type OGImage struct {
	ID        string `json:"id"`
	ContentID string `json:"contentId,omitempty"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Key       string `json:"key,omitempty"`
	Title     string `json:"title"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"createdAt"`
}

// UploadRequest is the admin body for generating and uploading a card.
// ID is the content identifier used in the filename.
type UploadRequest struct {
	ID string `json:"id" form:"id"`
	og.Request
	Styles *og.StyleConfig `json:"styles,omitempty"`
}
