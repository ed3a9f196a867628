package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const merchantTokenTTL = 24 * time.Hour

type JWTToken struct {
	config *Config
}

func NewJWTToken(config *Config) *JWTToken {
	return &JWTToken{config: config}
}

type jwtClaim struct {
	jwt.StandardClaims
	MerchantID    int64  `json:"merchant_id"`
	WalletAddress string `json:"wallet_address"`
	Role          string `json:"role"`
}

// TokenObject is the merchant identity carried by a bearer token.
type TokenObject struct {
	MerchantID    int64  `json:"merchant_id"`
	WalletAddress string `json:"wallet_address"`
	Role          string `json:"role"`
}

// CreateToken signs a merchant token. Production tokens come from the
// identity service; this is used by tooling and tests sharing the key.
func (j *JWTToken) CreateToken(merchant TokenObject) (string, error) {
	now := time.Now()
	claims := jwtClaim{
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(merchantTokenTTL).Unix(),
			Subject:   merchant.WalletAddress,
		},
		MerchantID:    merchant.MerchantID,
		WalletAddress: merchant.WalletAddress,
		Role:          merchant.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(j.config.SigningKey))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (j *JWTToken) VerifyToken(tokenString string) (TokenObject, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid authentication token, format error")
		}
		return []byte(j.config.SigningKey), nil
	})

	if err != nil {
		return TokenObject{}, fmt.Errorf("invalid authentication token, %v", err.Error())
	}

	claims, ok := token.Claims.(*jwtClaim)
	if !ok || !token.Valid {
		return TokenObject{}, fmt.Errorf("invalid authentication token, token is not OK")
	}

	if claims.MerchantID == 0 {
		return TokenObject{}, fmt.Errorf("invalid authentication token, no merchant")
	}

	return TokenObject{
		MerchantID:    claims.MerchantID,
		WalletAddress: claims.WalletAddress,
		Role:          claims.Role,
	}, nil
}
