package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translation "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate     *validator.Validate
	translator   ut.Translator
	validateOnce sync.Once
)

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := en_translation.RegisterDefaultTranslations(validate, trans); err != nil {
		// messages fall back to the raw field error
		trans = nil
	}
	return validate, trans
}

// ValidateStruct validates f against its validate tags and folds every
// violation into a single error.
func ValidateStruct(f interface{}) error {
	err := getValidator().Struct(f)
	return checkError(err)
}

// ValidateOneOf accepts an empty value or one of enums.
func ValidateOneOf(value string, enums ...string) error {
	tags := "omitempty,oneof=" + strings.Join(enums, " ")
	err := getValidator().Var(value, tags)
	return checkError(err)
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate, translator = newValidator()
	})
	return validate
}

func checkError(err error) error {
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	errStrs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "oneof":
			errStrValue := fmt.Sprintf("error value \"%v\"", e.Value())
			if e.Field() != "" {
				errStrValue = errStrValue + fmt.Sprintf(" for key \"%s\"", e.Field())
			}
			errStrValue = errStrValue + fmt.Sprintf(" not recognized, only support \"%s\"", e.Param())
			errStrs = append(errStrs, errStrValue)
		case "gte":
			errStrs = append(errStrs, fmt.Sprintf("%s cannot be less than %s", e.Field(), e.Param()))
		case "required":
			errStrs = append(errStrs, fmt.Sprintf("%s is required", e.Field()))
		default:
			if translator != nil {
				errStrs = append(errStrs, e.Translate(translator))
			} else {
				errStrs = append(errStrs, e.Error())
			}
		}
	}
	return errors.New(strings.Join(errStrs, " and "))
}
