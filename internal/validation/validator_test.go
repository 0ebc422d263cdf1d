package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/book"
)

func strPtr(s string) *string { return &s }

func decode(t *testing.T, body string) book.Input {
	t.Helper()
	var in book.Input
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func fieldsOf(err error) map[string]string {
	out := map[string]string{}
	var e *book.Error
	if errors.As(err, &e) {
		for _, f := range e.Fields {
			out[f.Field] = f.Message
		}
	}
	return out
}

func TestValidateCreate_ValidInput(t *testing.T) {
	g := New()
	in := decode(t, `{"title":"Eating Clean","author":"Inge Tumiwa-Bachrens","price":85000,
		"publication_year":2016,"cover":"https://example.com/cover.jpg"}`)

	assert.NoError(t, g.ValidateCreate(in))
}

func TestValidateCreate_RequiredFields(t *testing.T) {
	g := New()

	err := g.ValidateCreate(decode(t, `{"price":10}`))
	require.Error(t, err)
	assert.True(t, book.IsValidation(err))

	fields := fieldsOf(err)
	assert.Contains(t, fields["title"], "required")
	assert.Contains(t, fields["author"], "required")
	assert.True(t, strings.HasPrefix(err.Error(), "Invalid data - "))
}

func TestValidateCreate_Rules(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"blank title", `{"title":"   ","author":"A"}`, "title"},
		{"long author", `{"title":"T","author":"` + strings.Repeat("a", 256) + `"}`, "author"},
		{"bad cover", `{"title":"T","author":"A","cover":"not a url"}`, "cover"},
		{"negative price", `{"title":"T","author":"A","price":-1}`, "price"},
		{"long year", `{"title":"T","author":"A","publication_year":"` + strings.Repeat("9", 33) + `"}`, "publication_year"},
	}

	g := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateCreate(decode(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, fieldsOf(err), tt.field)
		})
	}
}

func TestValidateCreate_OptionalNulls(t *testing.T) {
	g := New()
	in := decode(t, `{"title":"T","author":"A","publisher":null,"cover":null,"price":null}`)

	assert.NoError(t, g.ValidateCreate(in))
}

func TestValidateCreate_BlankOptionalStringsAreNull(t *testing.T) {
	g := New()
	in := decode(t, `{"title":"T","author":"A","cover":"   ","publisher":""}`)

	assert.NoError(t, g.ValidateCreate(in))
	assert.Nil(t, in.Cover)
}

func TestValidateCreate_BuiltInCode(t *testing.T) {
	g := New()
	in := book.Input{Title: strPtr("Go"), Author: strPtr("Gopher")}

	assert.NoError(t, g.ValidateCreate(in))
}

func TestValidateUpdate_OnlyPresentFields(t *testing.T) {
	g := New()

	assert.NoError(t, g.ValidateUpdate(decode(t, `{"price":90000}`)))
	assert.NoError(t, g.ValidateUpdate(decode(t, `{}`)))
	assert.NoError(t, g.ValidateUpdate(decode(t, `{"publisher":null}`)))
}

func TestValidateUpdate_PresentFieldsStillChecked(t *testing.T) {
	g := New()

	err := g.ValidateUpdate(decode(t, `{"title":null}`))
	require.Error(t, err)
	assert.Contains(t, fieldsOf(err)["title"], "required")

	err = g.ValidateUpdate(decode(t, `{"author":""}`))
	require.Error(t, err)
	assert.Contains(t, fieldsOf(err), "author")

	err = g.ValidateUpdate(decode(t, `{"price":-5}`))
	require.Error(t, err)
	assert.Contains(t, fieldsOf(err), "price")
}
