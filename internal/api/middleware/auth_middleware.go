package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/auth"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/metrics"
)

const (
	userIDKey             = "userID"
	userEmailKey          = "userEmail"
	mustChangePasswordKey = "mustChangePassword"
)

// TokenValidator 校验访问令牌。
type TokenValidator interface {
	ValidateTokenOfType(token, tokenType string) (*auth.TokenClaims, error)
}

func abortUnauthorized(c *gin.Context) {
	abortWithKind(c, errcode.Unauthorized, "unauthorized")
}

// abortWithKind 写出与 api.Fail 相同形状的错误体。
func abortWithKind(c *gin.Context, kind errcode.Kind, message string) {
	c.Set(metrics.ErrorCodeKey, kind.String())
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": message, "code": kind.String()})
}

// AuthMiddleware 校验 Bearer 访问令牌并将用户身份注入上下文。
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		claims, err := validator.ValidateTokenOfType(parts[1], auth.TokenTypeAccess)
		if err != nil {
			LoggerFromContext(c).Debug("access token rejected", "error", err)
			abortUnauthorized(c)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userEmailKey, claims.Email)
		c.Set(mustChangePasswordKey, claims.MustChangePassword)
		c.Next()
	}
}

// UserID 返回已认证用户的 ID。
func UserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

// UserEmail 返回已认证用户的邮箱。
func UserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

// SetUser 在上下文中写入身份，供测试构造已认证请求。
func SetUser(c *gin.Context, userID uint, email string) {
	c.Set(userIDKey, userID)
	c.Set(userEmailKey, email)
}
