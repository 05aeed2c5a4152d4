package httpapi

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
)

const (
	roleTag  = "role"
	roleText = "{0} must be one of student, teacher, parent, branch-admin, country-master, super-master"
)

// requestValidator implements echo.Validator with English messages keyed by
// JSON field names.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	tr, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, tr)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterTranslation(roleTag, tr,
		func(t ut.Translator) error { return t.Add(roleTag, roleText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(roleTag, fe.Field())
			return msg
		},
	)

	return &requestValidator{validate: v, translator: tr}
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// translate renders validation errors as field -> message.
func (v *requestValidator) translate(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}
