package pagination

import (
	"encoding/base64"
	"encoding/json"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"` // Min 1, Max 250
}

// Limit clamps the requested page size into the allowed window so no query
// ever runs unbounded.
func (p Pagination) Limit() int {
	if p.PageSize < 1 {
		return 50
	}
	if p.PageSize > 250 {
		return 250
	}
	return p.PageSize
}

// Cursor is a keyset position inside a statement: the same cursor always
// reproduces the same page for the same inputs.
type Cursor struct {
	Date      string `json:"date,omitempty"`
	JournalID string `json:"journal_id,omitempty"`
	LineID    string `json:"line_id,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}
