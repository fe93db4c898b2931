package models

import (
	"errors"
	"unicode/utf8"

	"github.com/anchorapp/journal/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// EntryInput carries caller-supplied fields for add/update operations. It is
// validated before any repository call so no partial state is ever created.
type EntryInput struct {
	Title string   `validate:"max=200"`
	Body  string   `validate:"max=100000"`
	Tags  []string `validate:"max=32,dive,max=64"`
}

// ValidateEntryInput checks in against the Entry invariants and returns a
// common.ValidationError describing the first violation found.
func ValidateEntryInput(in EntryInput) error {
	if !utf8.ValidString(in.Body) {
		return &common.ValidationError{Field: "Body", Msg: "not valid UTF-8"}
	}
	if !utf8.ValidString(in.Title) {
		return &common.ValidationError{Field: "Title", Msg: "not valid UTF-8"}
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &common.ValidationError{Field: verrs[0].Field(), Msg: "failed " + verrs[0].Tag() + " constraint"}
		}
		return &common.ValidationError{Field: "input", Msg: err.Error()}
	}
	return nil
}
