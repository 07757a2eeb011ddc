package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"promo-restaurant-api/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const msgInvalidInput = "Datos inválidos"

func init() {
	// report validation failures under the JSON names clients send
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// respondError writes err as {"message": ...} with its HTTP status.
// Anything that is not an *apperr.Error is logged and reported as fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(fallback, err)
	}
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg(appErr.Message)
	}
	c.JSON(status, gin.H{"message": appErr.Message})
}

// bindJSON binds the body into req, answering 400 with per-field messages on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	return handleBindError(c, c.ShouldBindJSON(req))
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	return handleBindError(c, err)
}

func handleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := map[string][]string{}
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidInput})
	return false
}

func invalidField(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": msgInvalidInput,
		"errors":  map[string][]string{field: {msg}},
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obligatorio"
	case "email":
		return "Email inválido"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		return "Debe ser mayor o igual a " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
		}
		return "Debe ser menor o igual a " + fe.Param()
	case "gtefield":
		return "Debe ser igual o posterior a la fecha de inicio"
	case "oneof":
		return "Debe ser uno de: " + fe.Param()
	}
	return "Valor inválido"
}

// idParam parses a positive integer path parameter, answering 400 otherwise.
func idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "id inválido"})
		return 0, false
	}
	return uint(n), true
}

// optional trims s and maps blank input to nil.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
