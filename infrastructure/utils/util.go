package utils

import (
	"time"

	"viewtube/domain/model"
	"viewtube/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

func GenerateToken(payload map[string]interface{}, secretKey string) (string, error) {
	var claims jwt.MapClaims = payload
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// GenerateRequesterToken signs a bearer token identifying userName as the requester
func GenerateRequesterToken(userName, secretKey string, ttl time.Duration) (string, error) {
	now := GetCurrentTime()
	claims := model.UserClaims{
		UserName: userName,
		StandardClaims: jwt.StandardClaims{
			Subject:   userName,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
			Issuer:    "viewtube",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
