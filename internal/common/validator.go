package common

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/jo-hoe/goimagesearch/internal/model"
	"github.com/labstack/echo/v4"
)

var objectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 .\-_()]+$`)

type GenericEchoValidator struct {
	Validator *validator.Validate
	once      sync.Once
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	gv.once.Do(func() {
		if gv.Validator == nil {
			gv.Validator = NewValidator()
		}
	})
	if err := gv.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, describe(err))
	}
	return nil
}

// NewValidator returns a validator that knows the object tags (objectname,
// category, imagetype) and reports fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	mustRegister(v, "objectname", func(fl validator.FieldLevel) bool {
		return objectNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return model.ObjectCategory(fl.Field().String()).IsValid()
	})
	mustRegister(v, "imagetype", func(fl validator.FieldLevel) bool {
		return model.ImageType(fl.Field().String()).IsValid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register validation %s: %v", tag, err))
	}
}

// ValidateUUID checks a path parameter is a lower case UUID v4.
func ValidateUUID(value string) error {
	if err := uuidValidator().Var(value, "required,uuid4"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("uuid: %q is not a valid UUID v4", value))
	}
	return nil
}

var uuidValidator = sync.OnceValue(validator.New)

// describe turns the first validation failure into a message naming the field and the rule.
func describe(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return fmt.Sprintf("received invalid request body: %v", err)
	}
	fieldError := validationErrors[0]
	field := fieldError.Field()
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s: must not be empty", field)
	case "uuid4":
		return fmt.Sprintf("%s: must be a UUID v4", field)
	case "objectname":
		return fmt.Sprintf("%s: must only contain letters, digits, spaces and the characters .-_()", field)
	case "max":
		return fmt.Sprintf("%s: must not be longer than %s characters", field, fieldError.Param())
	case "category":
		return fmt.Sprintf("%s: must be one of %s", field, strings.Join(model.CategoryNames(), ", "))
	case "imagetype":
		return fmt.Sprintf("%s: must be one of %s", field, strings.Join(model.ImageTypeNames(), ", "))
	default:
		return fmt.Sprintf("%s: failed on the %s rule", field, fieldError.Tag())
	}
}
