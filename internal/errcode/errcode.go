package errcode

import (
	"errors"
	"net/http"
)

// 通知错误码约定：
// - 0：无错误
// - 4xxx：业务可恢复/告警类错误（例如资源缺失但流程可继续）
// - 5xxx：系统错误（需要中断流程）
const (
	OK              = 0
	ResourceMissing = 4004
	SystemError     = 5000
)

// Kind 是统一的错误分类。
type Kind int

const (
	Internal Kind = iota
	Unauthorized
	NotFound
	InvalidInput
	Conflict
	UnsupportedMediaType
	ExtractionFailed
	ParseFailed
	Unavailable
	Forbidden
	RateLimited
)

var kindNames = map[Kind]string{
	Internal:             "internal",
	Unauthorized:         "unauthorized",
	NotFound:             "not_found",
	InvalidInput:         "invalid_input",
	Conflict:             "conflict",
	UnsupportedMediaType: "unsupported_media_type",
	ExtractionFailed:     "extraction_failed",
	ParseFailed:          "parse_failed",
	Unavailable:          "unavailable",
	Forbidden:            "forbidden",
	RateLimited:          "rate_limited",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// HTTPStatus 返回错误分类对应的 HTTP 状态码。
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case InvalidInput:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case UnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case ExtractionFailed:
		return http.StatusUnprocessableEntity
	case ParseFailed:
		return http.StatusBadGateway
	case Unavailable:
		return http.StatusServiceUnavailable
	case Forbidden:
		return http.StatusForbidden
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error 携带错误分类、对外消息与底层原因。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建不带底层原因的分类错误。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 为底层错误附加分类。
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf 返回错误链中第一个分类，未分类的错误视为 Internal。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is 判断错误链中是否存在指定分类。
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage 返回可以展示给调用方的消息，内部错误不暴露细节。
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal && e.Message != "" {
		return e.Message
	}
	return "internal error"
}

// Notify 将错误分类转换为通知错误码。
func Notify(err error) int {
	switch {
	case err == nil:
		return OK
	case Is(err, NotFound):
		return ResourceMissing
	default:
		return SystemError
	}
}
