package handler

import (
	"errors"
	"net/http"
	"reflect"

	"blendcaja/internal/apierror"
	"blendcaja/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// notFoundCodes are estado errors that mean "no such record" rather than a conflict.
var notFoundCodes = map[string]bool{
	apierror.ErrVentaNoEncontrada.Code:   true,
	apierror.ErrGastoNoEncontrado.Code:   true,
	apierror.ErrClienteNoEncontrado.Code: true,
	"usuario_no_encontrado":              true,
	"cierre_no_encontrado":               true,
}

func statusFor(e *apierror.Error) int {
	switch e.Kind {
	case apierror.KindValidacion:
		if e.Code == "credenciales_invalidas" {
			return http.StatusUnauthorized
		}
		return http.StatusUnprocessableEntity
	case apierror.KindGuarda:
		return http.StatusUnprocessableEntity
	case apierror.KindEstado:
		if notFoundCodes[e.Code] {
			return http.StatusNotFound
		}
		return http.StatusConflict
	case apierror.KindRecurso:
		return http.StatusConflict
	case apierror.KindCuota:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes typed errors with their Kind and Code. Anything else is
// handed to middleware.ErrorHandler, which logs it and answers 500.
func respondError(c *gin.Context, err error) {
	var e *apierror.Error
	if !errors.As(err, &e) {
		_ = c.Error(err)
		return
	}
	c.JSON(statusFor(e), apierror.FromError(e))
}

func usuarioID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, _ := uuid.Parse(claims.UserID)
	return id
}

// puntoDeVenta returns the register pinned in the token, or the one requested
// when the user is not pinned to a register.
func puntoDeVenta(c *gin.Context, solicitado int) int {
	if claims := middleware.GetClaims(c); claims != nil && claims.PuntoDeVenta != nil {
		return *claims.PuntoDeVenta
	}
	return solicitado
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}
