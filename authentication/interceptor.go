package authentication

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	InvalidToken     = 301
	LoginAgainNeeded = 302

	DatabaseFailure = 501
)

// Authentication middleware without token available control.
// It also stores claims as key/value pair for this context. You can get it with c.Get("claims").
func Middleware(c *gin.Context) {
	claims, err := authAndGetClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error(), "code": InvalidToken})
		c.Abort()
		return
	}
	c.Set("claims", claims)
	c.Next()
}

// Authentication middleware with token available control using redis.
// It also stores claims as key/value pair for this context. You can get it with c.Get("claims").
func MiddlewareWithAvailableControl(c *gin.Context) {
	claims, err := authAndGetClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error(), "code": InvalidToken})
		c.Abort()
		return
	}
	ok, err := DoesTokenRecordExist(claims.UserId, claims.Id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "code": DatabaseFailure})
		c.Abort()
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "token is invalid, please log in again", "code": LoginAgainNeeded})
		c.Abort()
		return
	}
	c.Set("claims", claims)
	c.Next()
}

// Middleware for the realtime channel: a session may connect anonymously.
// Mobile websocket clients can't always set headers, so the token is also
// accepted as a query parameter.
func OptionalMiddleware(c *gin.Context) {
	tokenString, err := GetTokenString(c.Request)
	if err != nil {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.Next()
		return
	}
	claims, err := ParseToken(tokenString)
	if err != nil {
		c.Next()
		return
	}
	c.Set("claims", claims)
	c.Next()
}

func authAndGetClaims(c *gin.Context) (*Claims, error) {
	tokenString, err := GetTokenString(c.Request)
	if err != nil {
		return nil, err
	}
	claims, err := ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
