// api/models/book_models.go
package models

import (
	"bytes"
	"encoding/json"

	"github.com/Annany2002/opentextbook-backend/internal/content"
)

// GenreRequest defines the add-genre form
type GenreRequest struct {
	Genre string `form:"genre" json:"genre"`
}

// BookRequest defines the add and modify book forms
type BookRequest struct {
	Title       string `form:"title" json:"title"`
	Genre       string `form:"genre" json:"genre"`
	Description string `form:"description" json:"description"`
}

func (r BookRequest) Input() content.BookInput {
	return content.BookInput{Title: r.Title, Genre: r.Genre, Description: r.Description}
}

// PageNumber keeps the submitted page number as text. JSON bodies may send
// it as a number or a string; anything else is kept verbatim for the
// page rules to reject.
type PageNumber string

func (n *PageNumber) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(raw, []byte("null")):
		*n = ""
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*n = PageNumber(s)
	default:
		*n = PageNumber(raw)
	}
	return nil
}

// PageRequest defines the add and modify page forms
type PageRequest struct {
	ChapterName string     `form:"chapterName" json:"chapterName"`
	PageNumber  PageNumber `form:"pageNumber" json:"pageNumber"`
	Body        string     `form:"body" json:"body"`
}

func (r PageRequest) Input() content.PageInput {
	return content.PageInput{ChapterName: r.ChapterName, PageNumber: string(r.PageNumber), Body: r.Body}
}

// AccessRequestRequest defines the request-access form
type AccessRequestRequest struct {
	Request string `form:"request" json:"request"`
}
