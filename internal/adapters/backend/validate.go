package backend

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ecofuelconnect/efc/internal/domain"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var resourceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type payloadValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newPayloadValidator() *payloadValidator {
	validate := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names so messages name the fields the backend knows.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &payloadValidator{validate: validate, translator: translator}
}

// check returns a domain.ErrValidation-wrapped *Error describing every
// violated rule, or nil.
func (p *payloadValidator) check(what string, payload any) error {
	err := p.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Message: "Invalid " + what, Err: fmt.Errorf("%w: %w", domain.ErrValidation, err)}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		messages = append(messages, fieldErr.Translate(p.translator))
	}

	return &Error{
		Message: fmt.Sprintf("Invalid %s: %s", what, strings.Join(messages, "; ")),
		Err:     fmt.Errorf("%w: %w", domain.ErrValidation, err),
	}
}

func invalid(message string, cause error) error {
	return &Error{Message: message, Err: fmt.Errorf("%w: %w", domain.ErrValidation, cause)}
}

func checkID(what string, id string) error {
	if resourceIDPattern.MatchString(id) {
		return nil
	}

	return &Error{
		Message: fmt.Sprintf("Invalid %s id %q", what, id),
		Err:     fmt.Errorf("%w: %s id must be 1-64 letters, digits, '-' or '_'", domain.ErrValidation, what),
	}
}
