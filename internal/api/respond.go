package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"newsagg/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const invalidDataMessage = "The given data was invalid."

var registerFieldNamesOnce sync.Once

// registerFieldNames makes validator report json field names instead of Go names
func registerFieldNames() {
	registerFieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the body into obj and validates it. An empty body is
// validated as an empty object.
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}

	var (
		fieldErrs validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &fieldErrs):
		verr := models.NewValidationError()
		for _, fe := range fieldErrs {
			field := fieldPath(fe.Namespace())
			verr.Add(field, validationMessage(field, fe))
		}
		return verr
	case errors.As(err, &typeErr) && typeErr.Field != "":
		verr := models.NewValidationError()
		verr.Add(typeErr.Field, fmt.Sprintf("The %s must be %s.", humanize(typeErr.Field), kindName(typeErr.Type)))
		return verr
	}
	return &badRequestError{err: err}
}

// badRequestError marks a body that could not be decoded at all
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "malformed request body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

// respondError maps err onto the API error taxonomy
func respondError(c *gin.Context, err error) {
	var (
		verr     *models.ValidationError
		badReq   *badRequestError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": invalidDataMessage, "errors": verr.Fields})
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Request body too large"})
	case errors.As(err, &badReq):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed JSON body."})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Resource not found"})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
	}
}

// fieldPath turns "preferenceRequest.categories[1]" into "categories.1"
func fieldPath(namespace string) string {
	if _, rest, found := strings.Cut(namespace, "."); found {
		namespace = rest
	}
	return strings.NewReplacer("[", ".", "]", "").Replace(namespace)
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func validationMessage(field string, fe validator.FieldError) string {
	name := humanize(field)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", name, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s does not match.", name)
	default:
		return fmt.Sprintf("The %s is invalid.", name)
	}
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "valid"
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.Bool:
		return "true or false"
	default:
		return "valid"
	}
}

// queryInt parses an optional integer query parameter, recording a message
// in verr when it is not a number
func queryInt(c *gin.Context, name string, verr *models.ValidationError) (int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		verr.Add(name, fmt.Sprintf("The %s must be an integer.", humanize(name)))
		return 0, false
	}
	return v, true
}

// pageParams reads page and per_page; an explicit value below 1 is rejected
func pageParams(c *gin.Context, verr *models.ValidationError) (page, perPage int) {
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &page}, {"per_page", &perPage}} {
		v, ok := queryInt(c, p.name, verr)
		if !ok {
			continue
		}
		if v < 1 {
			verr.Add(p.name, fmt.Sprintf("The %s must be at least 1.", humanize(p.name)))
			continue
		}
		if v > math.MaxInt32 {
			v = math.MaxInt32
		}
		*p.dst = int(v)
	}
	return page, perPage
}
