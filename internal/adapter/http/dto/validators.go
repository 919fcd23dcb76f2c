package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// moneyRe matches a positive decimal with at most two fractional digits.
	moneyRe = regexp.MustCompile(`^\d{1,15}(\.\d{1,2})?$`)

	// telegramIDRe matches a numeric platform user id.
	telegramIDRe = regexp.MustCompile(`^\d{1,20}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("telegram_id", validateTelegramID)
	}
}

// validateMoney accepts non-negative decimal strings with cent precision.
// Range and minimum rules stay in the service layer.
func validateMoney(fl validator.FieldLevel) bool {
	return moneyRe.MatchString(fl.Field().String())
}

// validateTelegramID accepts digit-only identifiers.
func validateTelegramID(fl validator.FieldLevel) bool {
	return telegramIDRe.MatchString(fl.Field().String())
}
