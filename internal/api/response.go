package api

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/metrics"
)

var errUnauthenticated = errcode.New(errcode.Unauthorized, "unauthorized")

// AbortUnauthorized 写出 401。
func AbortUnauthorized(c *gin.Context) {
	Fail(c, errUnauthenticated)
}

// Fail 按错误分类写出响应，内部错误只记录日志不外泄。
func Fail(c *gin.Context, err error) {
	kind := errcode.KindOf(err)
	logger := middleware.LoggerFromContext(c)
	if kind == errcode.Internal || kind == errcode.Unavailable {
		logger.Error("request failed", slog.String("kind", kind.String()), slog.Any("error", err))
	} else {
		logger.Info("request rejected", slog.String("kind", kind.String()), slog.Any("error", err))
	}
	c.Set(metrics.ErrorCodeKey, kind.String())
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": errcode.PublicMessage(err), "code": kind.String()})
}

// FailBinding 将绑定或校验错误转换为 InvalidInput。
func FailBinding(c *gin.Context, err error) {
	Fail(c, errcode.Wrap(errcode.InvalidInput, bindingMessage(err), err))
}

func bindingMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "url":
		return field + " must be a valid url"
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// userIDFromContext 读取认证中间件写入的用户 ID。
func userIDFromContext(c *gin.Context) (uint, bool) {
	return middleware.UserID(c)
}

// idParam 解析路径中的正整数 ID，非法值视为不存在。
func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errcode.New(errcode.NotFound, name+" not found")
	}
	return uint(id), nil
}

// requireUser 返回用户 ID，未认证时直接写出 401。
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return 0, false
	}
	return userID, true
}

// resumeScope 返回用户 ID 与路径中的简历 ID。
func resumeScope(c *gin.Context) (userID, resumeID uint, ok bool) {
	if userID, ok = requireUser(c); !ok {
		return 0, 0, false
	}
	resumeID, err := idParam(c, "id")
	if err != nil {
		Fail(c, errcode.New(errcode.NotFound, "resume not found"))
		return 0, 0, false
	}
	return userID, resumeID, true
}
