package middleware

import (
	"net/http"
	"strings"

	"github.com/Swyp/Swyp-Backend/api/apistrings"
	"github.com/Swyp/Swyp-Backend/models"
	"github.com/Swyp/Swyp-Backend/utils"
	"github.com/gin-gonic/gin"
)

const AdminKeyHeader = "X-Admin-Key"

// AuthenticatedMiddleware verifies the merchant bearer token and exposes the
// merchant under the "merchant" key.
func AuthenticatedMiddleware(tokens *utils.JWTToken) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
			return
		}

		tokenSplit := strings.Split(token, " ")
		if len(tokenSplit) != 2 || strings.ToLower(tokenSplit[0]) != "bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(apistrings.InvalidBearerToken))
			return
		}

		merchant, err := tokens.VerifyToken(tokenSplit[1])
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(err.Error()))
			return
		}

		ctx.Set("merchant_id", merchant.MerchantID)
		/// Accessible Merchant Across the App
		ctx.Set("merchant", merchant)
		ctx.Next()
	}
}

// AdminKeyMiddleware compares X-Admin-Key against a bcrypt hash. An empty
// hash disables every admin route.
func AdminKeyMiddleware(keyHash string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader(AdminKeyHeader)
		if keyHash == "" || key == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
			return
		}

		if err := utils.VerifyHashValue(key, keyHash); err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(apistrings.InvalidAdminKey))
			return
		}

		ctx.Set("actor", "admin")
		ctx.Next()
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {

		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Admin-Key")
		c.Header("Access-Control-Allow-Methods", "POST,HEAD,PATCH,OPTIONS,GET,PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
