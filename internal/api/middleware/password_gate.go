package middleware

import (
	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/errcode"
)

const passwordChangeRequiredMessage = "password change required"

// RequirePasswordChangeCompletedMiddleware 阻止未完成改密的账号访问业务接口。
// 只读取访问令牌中的 must_change_password 声明，须挂在 AuthMiddleware 之后。
func RequirePasswordChangeCompletedMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if MustChangePassword(c) {
			abortWithKind(c, errcode.Forbidden, passwordChangeRequiredMessage)
			return
		}
		c.Next()
	}
}

// MustChangePassword 报告当前访问令牌是否要求先修改密码。
func MustChangePassword(c *gin.Context) bool {
	return c.GetBool(mustChangePasswordKey)
}
