// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ronin/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) {
	// Decimals are validated through their string form.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("period_type", validatePeriodType)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("category_group", validateCategoryGroup)
	_ = v.RegisterValidation("budget_strategy", validateBudgetStrategy)
	_ = v.RegisterValidation("budget_status", validateBudgetStatus)
	_ = v.RegisterValidation("card_type", validateCardType)
	_ = v.RegisterValidation("decimal_gte0", validateDecimalGTE0)
	_ = v.RegisterValidation("decimal_gt0", validateDecimalGT0)
	_ = v.RegisterValidation("decimal_ne0", validateDecimalNE0)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validatePeriodType(fl validator.FieldLevel) bool {
	return models.PeriodType(fl.Field().String()).Valid()
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateCategoryGroup(fl validator.FieldLevel) bool {
	return models.CategoryGroup(fl.Field().String()).Valid()
}

func validateBudgetStrategy(fl validator.FieldLevel) bool {
	return models.BudgetStrategy(fl.Field().String()).Valid()
}

func validateBudgetStatus(fl validator.FieldLevel) bool {
	return models.BudgetStatus(fl.Field().String()).Valid()
}

func validateCardType(fl validator.FieldLevel) bool {
	return models.CardType(fl.Field().String()).Valid()
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func decimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	return d, err == nil
}

func validateDecimalGTE0(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && !d.IsNegative()
}

func validateDecimalGT0(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && d.IsPositive()
}

func validateDecimalNE0(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && !d.IsZero()
}
