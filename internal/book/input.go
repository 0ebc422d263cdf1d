package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Input is a create or update payload. Only the keys present in the
// decoded JSON body are applied to a book.
type Input struct {
	Title           *string  `json:"title" validate:"required,notblank,max=255"`
	Author          *string  `json:"author" validate:"required,notblank,max=255"`
	Publisher       *string  `json:"publisher" validate:"omitempty,max=255"`
	PublicationYear *Year    `json:"publication_year" validate:"omitempty,max=32"`
	Cover           *string  `json:"cover" validate:"omitempty,url,max=2048"`
	Description     *string  `json:"description" validate:"omitempty,max=10000"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`

	// present is nil for inputs built in code; then every non-nil field counts.
	present map[string]bool
}

// UnmarshalJSON decodes the payload and remembers which keys it carried.
// Strings are trimmed and blank ones decode as null.
func (in *Input) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	type plain Input
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*in = Input(decoded)
	in.Title = blankToNil(in.Title)
	in.Author = blankToNil(in.Author)
	in.Publisher = blankToNil(in.Publisher)
	in.Cover = blankToNil(in.Cover)
	in.Description = blankToNil(in.Description)
	if in.PublicationYear != nil && *in.PublicationYear == "" {
		in.PublicationYear = nil
	}
	in.present = make(map[string]bool, len(keys))
	for k := range keys {
		in.present[k] = true
	}
	return nil
}

// Has reports whether the payload carries the given JSON key.
func (in Input) Has(key string) bool {
	if in.present != nil {
		return in.present[key]
	}
	switch key {
	case "title":
		return in.Title != nil
	case "author":
		return in.Author != nil
	case "publisher":
		return in.Publisher != nil
	case "publication_year":
		return in.PublicationYear != nil
	case "cover":
		return in.Cover != nil
	case "description":
		return in.Description != nil
	case "price":
		return in.Price != nil
	}
	return false
}

// Apply overwrites the fields of b that are present in the input.
func (in Input) Apply(b *Book) {
	if in.Has("title") && in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Has("author") && in.Author != nil {
		b.Author = strings.TrimSpace(*in.Author)
	}
	if in.Has("publisher") {
		b.Publisher = blankToNil(in.Publisher)
	}
	if in.Has("publication_year") {
		b.PublicationYear = in.PublicationYear.StringPtr()
	}
	if in.Has("cover") {
		b.Cover = blankToNil(in.Cover)
	}
	if in.Has("description") {
		b.Description = blankToNil(in.Description)
	}
	if in.Has("price") {
		b.Price = in.Price
	}
}

// Year is a publication year. Clients send it either as a JSON number or
// as a string; it is kept as text.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = Year(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("publication_year must be a number or a string")
	}
	*y = Year(n.String())
	return nil
}

// StringPtr returns the year as *string, nil for a nil receiver or a blank year.
func (y *Year) StringPtr() *string {
	if y == nil {
		return nil
	}
	s := string(*y)
	return blankToNil(&s)
}

// blankToNil trims s and returns nil when nothing is left.
func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
