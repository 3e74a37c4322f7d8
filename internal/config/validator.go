package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type customValidation struct {
	tag     string
	fn      validator.Func
	message string
}

var customValidations = []customValidation{
	{tag: "file", fn: isFileReadable, message: "{0} must be an existing and readable file"},
	{tag: "base_url", fn: isBaseURL, message: "{0} must be an http or https URL ending with a slash"},
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for _, custom := range customValidations {
		if err := validate.RegisterValidation(custom.tag, custom.fn); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s validation: %w", custom.tag, err)
		}
		if err := validate.RegisterTranslation(custom.tag, trans, func(ut ut.Translator) error {
			return ut.Add(custom.tag, custom.message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(custom.tag, fe.Field())
			return t
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s translation: %w", custom.tag, err)
		}
	}

	return validate, trans, nil
}

// fieldPath returns the configuration key of a field, such as remote.base_url.
func fieldPath(fe validator.FieldError) string {
	return strings.TrimPrefix(fe.Namespace(), "Config.")
}

func isFileReadable(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	// Check if the owner has read permission
	return info.Mode().Perm()&(1<<(uint(8))) != 0
}

// isBaseURL accepts URLs that a word can be appended to.
func isBaseURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && strings.HasSuffix(raw, "/")
}
