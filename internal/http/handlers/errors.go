// Package handlers provides HTTP handler implementations for the public API.
//
// This file is the bridge between Gin's native failures and the apierr
// taxonomy. Body decoding, validator output and query-parameter conversion
// all end up here, so it is the only place to touch when the framework
// surface changes:
//
//   - malformed or empty JSON body      -> *apierr.UnreadableBodyError
//   - validator.ValidationErrors        -> *apierr.BodyValidationError (encounter order)
//   - absent required query parameter   -> *apierr.MissingParameterError
//   - non-integer numeric parameter     -> *apierr.TypeMismatchError ("Integer")
//   - out-of-range scalar parameters    -> *apierr.ConstraintError (sorted)
package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json tag so
// messages match what clients sent.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bindJSON decodes and validates the request body into dst.
func bindJSON(c *gin.Context, dst any) error {
	useJSONFieldNames()
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return bodyValidation(verrs)
	}
	return &apierr.UnreadableBodyError{Cause: err}
}

func bodyValidation(verrs validator.ValidationErrors) *apierr.BodyValidationError {
	out := &apierr.BodyValidationError{Fields: make([]apierr.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, apierr.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldMessage renders a single validator failure for clients.
func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}

// intParam describes a bounded integer query parameter.
type intParam struct {
	Name     string
	Default  int
	Min, Max int
}

// queryInts reads and range-checks params in order. A conversion failure is
// reported immediately; range violations are collected and returned
// together, sorted by parameter name.
func queryInts(c *gin.Context, params ...intParam) ([]int, error) {
	out := make([]int, len(params))
	var violations []apierr.Violation
	for i, p := range params {
		raw, present := c.GetQuery(p.Name)
		if !present || strings.TrimSpace(raw) == "" {
			out[i] = p.Default
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &apierr.TypeMismatchError{Name: p.Name, Type: "Integer", Value: raw}
		}
		switch {
		case n < p.Min:
			violations = append(violations, apierr.Violation{
				Param:   p.Name,
				Message: fmt.Sprintf("must be greater than or equal to %d", p.Min),
			})
		case p.Max > 0 && n > p.Max:
			violations = append(violations, apierr.Violation{
				Param:   p.Name,
				Message: fmt.Sprintf("must be less than or equal to %d", p.Max),
			})
		}
		out[i] = n
	}
	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].Param != violations[j].Param {
				return violations[i].Param < violations[j].Param
			}
			return violations[i].Message < violations[j].Message
		})
		return nil, &apierr.ConstraintError{Violations: violations}
	}
	return out, nil
}

// pageParams reads the page/limit pair used by offset-paginated listings.
func pageParams(c *gin.Context, defaultLimit, maxLimit int) (page, limit int, err error) {
	v, err := queryInts(c,
		intParam{Name: "page", Default: 1, Min: 1},
		intParam{Name: "limit", Default: defaultLimit, Min: 1, Max: maxLimit},
	)
	if err != nil {
		return 0, 0, err
	}
	return v[0], v[1], nil
}

// requiredQuery returns a non-blank query parameter or MissingParameterError.
func requiredQuery(c *gin.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return "", &apierr.MissingParameterError{Name: name}
	}
	return v, nil
}
