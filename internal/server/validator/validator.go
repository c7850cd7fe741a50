package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
)

var trans ut.Translator

// InitValidator wires the gin binding validator with json tag names, english
// translations and the custom feature tag. Must run once before the router
// starts serving.
func InitValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("feature", validFeature)

	locale := en.New()
	trans, _ = ut.New(locale, locale).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)
}

// jsonFieldName reports fields by their wire name so validation errors match
// the payload the caller actually sent.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func validFeature(fl validator.FieldLevel) bool {
	_, err := domain.ParseFeature(fl.Field().String())
	return err == nil
}

// ParseValidationError flattens binding failures into a field to message map
// suitable for an error response body. Nested struct namespaces keep their
// path below the root type so batch items report as requests[2].feature.
func ParseValidationError(err error) map[string]string {
	fields := make(map[string]string)

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["body"] = "request body is not valid JSON for this endpoint"
		return fields
	}

	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i != -1 {
			ns = ns[i+1:]
		}
		fields[ns] = messageFor(fe)
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "feature":
		return fmt.Sprintf("must be one of [%s]", featureList())
	default:
		return fe.Translate(trans)
	}
}

func featureList() string {
	names := make([]string, 0, len(domain.Features()))
	for _, f := range domain.Features() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
