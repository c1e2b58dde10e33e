package v1

import (
	"checkout/api/internal/domain"
	"checkout/pkg/utils"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

type createInvoiceData struct {
	PayerContact    string          `json:"payer_contact" validate:"max=256"`
	RequestedAmount decimal.Decimal `json:"requested_amount"` // pricing currency
}

type verifyTxnData struct {
	SessionID        string `json:"session_id" validate:"required,uuid"`
	TxReferenceInput string `json:"tx_reference_input" validate:"required,max=512"`
}

type createOrderData struct {
	PayerContact   string          `json:"payer_contact" validate:"max=256"`
	Product        domain.Product  `json:"product" validate:"required"`
	Shipping       domain.Shipping `json:"shipping" validate:"required"`
	Total          decimal.Decimal `json:"total"` // product price plus shipping, pricing currency
	ShippingOrigin string          `json:"shipping_origin" validate:"max=8"`
}

// binds the json body into data and validates it.
// returns false if the response was already written
func bindAndValidate[T any](c *gin.Context, data *T) bool {
	if err := c.ShouldBindJSON(data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return false
	}

	err := validate.Struct(data)
	if err == nil {
		return true
	}

	validationErrs, castErr := utils.SafeCast[validator.ValidationErrors](err)
	if castErr != nil || len(validationErrs) == 0 {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return false
	}

	responseErr(c, http.StatusBadRequest, formatValidationErr(*data, validationErrs[0]), "")
	return false
}

// decimals are plain structs to the validator, so amounts are checked here
func requirePositive(c *gin.Context, field string, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		responseErr(c, http.StatusBadRequest, fmt.Sprintf("field '%s' must be greater than 0", field), "")
		return false
	}
	return true
}

func formatValidationErr(data any, err validator.FieldError) string {
	jsonTag := getJSONTag(data, err.StructNamespace())

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", jsonTag)
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of '%s'", jsonTag, err.Param())
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s characters long", jsonTag, err.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters long", jsonTag, err.Param())
	case "uuid":
		return fmt.Sprintf("field '%s' must be a valid uuid", jsonTag)
	case "url":
		return fmt.Sprintf("field '%s' must be a valid url", jsonTag)
	default:
		return fmt.Sprintf("invalid field '%s'", jsonTag)
	}
}

// maps a struct namespace (createOrderData.Shipping.Address.City) to the
// json path (shipping.address.city)
func getJSONTag(structType any, namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	typ := reflect.TypeOf(structType)
	var path []string
	for _, name := range parts {
		for typ != nil && typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		if typ == nil || typ.Kind() != reflect.Struct {
			path = append(path, name)
			continue
		}

		field, ok := typ.FieldByName(name)
		if !ok {
			path = append(path, name)
			typ = nil
			continue
		}

		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == "" {
			tag = name
		}
		path = append(path, tag)
		typ = field.Type
	}

	return strings.Join(path, ".")
}
