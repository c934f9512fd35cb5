package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"harvesthub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	accessTokenCookie = "accessToken"
	userContextKey    = "user"
)

// Claims is the access token payload issued by the auth service.
type Claims struct {
	ID    string      `json:"_id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func tokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(accessTokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Auth verifies the HS256 access token and stores its claims on the context.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		raw := tokenFrom(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized request"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || claims.ID == "" {
			if err == nil {
				err = errors.New("token has no subject")
			}
			log.Debug().Err(err).Msg("rejected access token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid access token"})
			return
		}

		c.Set(userContextKey, claims)
		c.Next()
	}
}

// RequireRole lets only the given roles through. It must run after Auth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentUser(c)
		for _, r := range roles {
			if claims != nil && claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
	}
}

func currentUser(c *gin.Context) *Claims {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

// RequestLogger logs every request once it completes and turns panics into
// a 500 response.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Str("method", c.Request.Method).
					Str("url", c.Request.URL.String()).
					Str("error", fmt.Sprintf("%v", rec)).
					Msg("request panicked")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal Server Error"})
			}
		}()

		c.Next()

		userID := "anonymous"
		if claims := currentUser(c); claims != nil {
			userID = claims.ID
		}
		status := c.Writer.Status()
		evt := log.Info()
		if status >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("url", c.Request.URL.String()).
			Str("user_id", userID).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}
