// Package bind decodes and validates JSON request bodies
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes caps a body when JSONOptions.MaxBytes is zero
const DefaultMaxBytes = 1 << 20

// ValidatorSvc holds the validator and its english translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce    sync.Once
	vSvc     *ValidatorSvc
	jsonMore = func(dec *json.Decoder) bool { return dec.More() } // seam
)

// Get returns the validator singleton, building it on first use
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		// messages name the json field the client sent
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		translate(v, trans, "min", "{0} must be at least {1}", true)
		translate(v, trans, "max", "{0} must be at most {1}", true)

		_ = v.RegisterValidation("ymd", isYMD)
		translate(v, trans, "ymd", "{0} must be a YYYY-MM-DD date", false)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// isYMD accepts a calendar day such as 2025-01-31
func isYMD(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

// JSONOptions controls parsing; the zero value is strict with a 1MB cap
type JSONOptions struct {
	MaxBytes       int64 // 0 means DefaultMaxBytes, negative disables the cap
	AllowUnknown   bool
	AllowEmptyBody bool
}

// ParseJSON decodes JSON into T, validates it, and maps failures to coded errors.
// A body over the cap is ErrorCodeTooLarge; malformed JSON is ErrorCodeJSON; a failed rule is ErrorCodeValidation
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	var o JSONOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.C(r.Context()).Error().Err(err).Msg("failed to close request body")
		}
	}()

	var body io.Reader = r.Body
	switch {
	case o.MaxBytes == 0:
		body = http.MaxBytesReader(nil, r.Body, DefaultMaxBytes)
	case o.MaxBytes > 0:
		body = http.MaxBytesReader(nil, r.Body, o.MaxBytes)
	}

	if !o.AllowEmptyBody {
		buf := make([]byte, 1)
		n, _ := body.Read(buf)
		if n == 0 {
			// safe methods may carry no body at all
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				return zero, nil
			}
			return zero, perr.JSONErrf("empty body")
		}
		body = io.MultiReader(bytes.NewReader(buf[:n]), body)
	}

	dec := json.NewDecoder(body)
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if tooBig := new(http.MaxBytesError); errors.As(err, &tooBig) {
			return zero, perr.Newf(perr.ErrorCodeTooLarge, "body exceeds %d bytes", tooBig.Limit)
		}
		if o.AllowEmptyBody && errors.Is(err, io.EOF) {
			return dst, nil
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if jsonMore(dec) {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := validate(dst); err != nil {
		if inv := new(validator.InvalidValidationError); errors.As(err, &inv) {
			logger.C(r.Context()).Error().Err(inv).Msg("validator internal error")
			return zero, perr.JSONErrf("validation error")
		}
		field, msg := FieldAndMessage(err)
		return zero, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
	}
	return dst, nil
}

// validate checks structs field by field and slices element by element
func validate(v any) error {
	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Slice, reflect.Array:
		return Get().Validator.Var(v, "dive")
	}
	return Get().Validator.Struct(v)
}

// FieldAndMessage returns the first failing field and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(Get().Translator)
	}
	return "", err.Error()
}

func translate(v *validator.Validate, trans ut.Translator, tag, text string, withParam bool) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			params := []string{fe.Field()}
			if withParam {
				params = append(params, fe.Param())
			}
			msg, _ := t.T(tag, params...)
			return msg
		},
	)
}
