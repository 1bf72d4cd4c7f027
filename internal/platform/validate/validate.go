// Package validate wraps go-playground/validator with english translations,
// json tag field names and project error mapping
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// TagAPIToken validates a service-issued token: 64 lowercase hex characters
const TagAPIToken = "api_token"

// Svc holds a singleton validator and translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// Get returns the validator singleton, initializing on first use
func Get() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		_ = v.RegisterValidation(TagAPIToken, isAPIToken)
		registerMessage(v, trans, TagAPIToken, "{0} must be a 64 character lowercase hex token")
		registerMessage(v, trans, "oneof", "{0} must be one of [{1}]")

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

func isAPIToken(fl validator.FieldLevel) bool {
	return IsAPIToken(fl.Field().String())
}

// IsAPIToken reports whether s has the service token format
func IsAPIToken(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Struct validates v and maps the first failure to a Validation error with its field
func Struct(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	return mapErr(err, "")
}

// Var validates a single value against tag; name is used as the field in messages
func Var(name string, value any, tag string) error {
	err := Get().Validator.Var(value, tag)
	if err == nil {
		return nil
	}
	return mapErr(err, name)
}

func mapErr(err error, name string) error {
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Named("validate").Error().Err(inv).Msg("validator internal error")
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validation error")
	}
	field, msg := FieldAndMessage(err)
	if name != "" {
		field = name
		msg = name + " " + strings.TrimSpace(msg)
	}
	return perr.WithField(perr.Validationf("%s", msg), field)
}

// FieldAndMessage returns the first field and translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
