// Package validate decodes and validates JSON request bodies.
//
// Validation rules live as struct tags on the request DTOs, mirroring
// the declarative schemas the API documents, and are independent of the
// persistence layer.
package validate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shelterhub/shelterhub/internal/app/system/apierr"
)

var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report the json field name instead of the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Body decodes the request body into dst and validates it. Returns an
// *apierr.Error describing every rejected field, or nil.
func Body(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apierr.Validation([]apierr.FieldError{{
			Field:    "body",
			Location: "body",
			Messages: []string{"invalid JSON body"},
		}})
	}
	return Struct(dst)
}

// Struct validates dst against its struct tags.
func Struct(dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierr.BadRequest("invalid request")
	}
	fields := make([]apierr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierr.FieldError{
			Field:    fe.Field(),
			Location: "body",
			Messages: []string{message(fe)},
		})
	}
	return apierr.Validation(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "email":
		return fmt.Sprintf("%q must be a valid email", fe.Field())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%q must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%q must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%q is invalid", fe.Field())
	}
}
