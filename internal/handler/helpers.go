package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/apierror"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/repository"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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
// Returns false and writes the error response if validation fails -
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
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

// respondError maps service and repository errors onto HTTP statuses.
// Anything unrecognized is pushed through the error-handler middleware as 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrDrawerNotFound),
		errors.Is(err, repository.ErrSaleNotFound),
		errors.Is(err, repository.ErrMethodNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrAlreadyOpen),
		errors.Is(err, repository.ErrDrawerNotOpen),
		errors.Is(err, service.ErrDrawerNotClosed),
		errors.Is(err, service.ErrNoOpenDrawer):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCard),
		errors.Is(err, service.ErrInsufficientPayment),
		errors.Is(err, service.ErrMissingPaymentData),
		errors.Is(err, service.ErrMethodMismatch),
		errors.Is(err, service.ErrAmountMismatch),
		errors.Is(err, service.ErrNotesRequired),
		errors.Is(err, service.ErrZeroAmount):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
