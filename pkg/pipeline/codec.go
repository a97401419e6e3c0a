package pipeline

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/pipecheck/pkg/errors"
)

// validate is a singleton validator instance.
var validate = validator.New()

// Decode reads one payload from r and checks its shape. Unknown fields are
// ignored. Malformed JSON, missing arrays and nodes or edges without their
// required keys fail with [errors.ErrCodeInvalidPayload].
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		var perr *errors.Error
		if stderrors.As(err, &perr) {
			return nil, perr
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "malformed pipeline JSON")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ReadFile decodes the payload stored at path.
func ReadFile(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Encode writes v as indented JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteFile encodes v to path.
func WriteFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate checks the payload's shape using its struct tags.
func (p *Payload) Validate() error {
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into a single
// [errors.ErrCodeInvalidPayload] error naming the first offending field.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidPayload, err, "invalid pipeline")
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return errors.New(errors.ErrCodeInvalidPayload, "%s: field required", field)
	default:
		return errors.New(errors.ErrCodeInvalidPayload, "%s: failed %q validation", field, fe.Tag())
	}
}
