package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"viewtube/domain/dto"
	"viewtube/domain/model"
	"viewtube/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// RequesterKey is the gin context key holding the authenticated requester identity
const RequesterKey = "requester"

// Auth validates the HS256 bearer token and stores its requester on the context.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		authorization := ctx.Request.Header.Get("Authorization")
		auth := strings.Split(authorization, "Bearer ")
		if authorization == "" || len(auth) != 2 || auth[1] == "" || secretKey == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		userClaims, token, err := getClaim(auth[1], secretKey)
		if err != nil || token == nil || !token.Valid {
			res.ResponseMessage = reason(err)
			logger.GetLogger().WithField("error", err).Debug("rejected bearer token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		requester := userClaims.Requester()
		if requester == "" {
			res.ResponseMessage = "Token has no user"
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		ctx.Set(RequesterKey, requester)
		ctx.Next()
	}
}

// Requester returns the identity set by Auth, or "" on unauthenticated routes.
func Requester(ctx *gin.Context) string {
	return ctx.GetString(RequesterKey)
}

func reason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token:%v", err)
	}
	return "Unauthorized"
}

func getClaim(tokenString string, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var userClaims model.UserClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&userClaims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		},
	)
	return userClaims, token, err
}
