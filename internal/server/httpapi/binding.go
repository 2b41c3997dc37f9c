package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/devconnector/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerValidationsOnce sync.Once

// registerValidations teaches gin's shared validator the rules used by the
// request structs and makes it report JSON field names.
func registerValidations() {
	registerValidationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic(fmt.Sprintf("httpapi: unexpected validator engine %T", binding.Validator.Engine()))
		}
		v.RegisterTagNameFunc(jsonFieldName)
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
			panic(err)
		}
	})
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// maxBytes bounds the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// fieldMessages holds the message reported for a field when any of its rules
// fails. byTag overrides it for individual rules.
type fieldMessages struct {
	msg   string
	byTag map[string]string
}

var registerMessages = map[string]fieldMessages{
	"name":  {msg: services.MsgNameRequired},
	"email": {msg: services.MsgEmailInvalid},
	"password": {
		msg:   services.MsgPasswordTooShort,
		byTag: map[string]string{"maxbytes": services.MsgPasswordTooLong},
	},
}

var loginMessages = map[string]fieldMessages{
	"email":    {msg: services.MsgEmailInvalid},
	"password": {msg: services.MsgPasswordRequired},
}

// validationError converts validator output into the API error shape. The
// validator reports fields in struct order with one failed rule per field.
func validationError(verrs validator.ValidationErrors, messages map[string]fieldMessages) *services.ValidationError {
	out := &services.ValidationError{Errors: make([]services.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		fm := messages[fe.Field()]
		msg, ok := fm.byTag[fe.Tag()]
		if !ok {
			msg = fm.msg
		}
		if msg == "" {
			msg = fe.Error()
		}
		out.Errors = append(out.Errors, services.FieldError{Param: fe.Field(), Msg: msg})
	}
	return out
}

// bindJSON decodes and validates the body into req. It writes the error
// response itself and reports whether the handler may continue.
func (s *Server) bindJSON(c *gin.Context, req any, messages map[string]fieldMessages) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		s.writeError(c, validationError(verrs, messages))
		return false
	}
	badBody(c)
	return false
}
