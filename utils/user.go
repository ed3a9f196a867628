package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func GetActiveMerchant(ctx *gin.Context) (TokenObject, error) {
	value, exists := ctx.Get("merchant")
	if !exists {
		return TokenObject{}, fmt.Errorf("error occurred, not authorized to access this resource")
	}

	merchant, ok := value.(TokenObject)
	if !ok {
		return TokenObject{}, fmt.Errorf("an error occurred")
	}

	return merchant, nil
}
