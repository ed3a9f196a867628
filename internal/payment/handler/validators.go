package payment

import (
	"sync"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators adds the payment binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("chain", validChain)
		_ = v.RegisterValidation("usdc_amount", validUSDCAmount)
		_ = v.RegisterValidation("payment_status", validPaymentStatus)
	})
}

func validChain(fl validator.FieldLevel) bool {
	_, err := domain.ParseChain(fl.Field().String())
	return err == nil
}

func validUSDCAmount(fl validator.FieldLevel) bool {
	amount, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return domain.ValidateAmount(amount) == nil
}

func validPaymentStatus(fl validator.FieldLevel) bool {
	_, err := domain.ParseStatus(fl.Field().String())
	return err == nil
}
