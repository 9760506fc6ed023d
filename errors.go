package testgen

import (
	"fmt"
	"runtime"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 错误代码常量
const (
	// 系统级错误 (1000-1999)
	ErrCodeSystem        ErrorCode = "TESTGEN_1000"
	ErrCodeConfigInvalid ErrorCode = "TESTGEN_1001"
	ErrCodeSeedCheck     ErrorCode = "TESTGEN_1002"
	ErrCodeOutputDir     ErrorCode = "TESTGEN_1003"

	// 注册相关错误 (2000-2999)
	ErrCodeDuplicateName   ErrorCode = "TESTGEN_2000"
	ErrCodeInvalidRepeat   ErrorCode = "TESTGEN_2001"
	ErrCodeNilBuilder      ErrorCode = "TESTGEN_2002"
	ErrCodeEmptyName       ErrorCode = "TESTGEN_2003"
	ErrCodeEmptyCollection ErrorCode = "TESTGEN_2004"

	// 生成相关错误 (3000-3999)
	ErrCodeSlugCollision    ErrorCode = "TESTGEN_3000"
	ErrCodeInvalidSlug      ErrorCode = "TESTGEN_3001"
	ErrCodeGenerationFailed ErrorCode = "TESTGEN_3002"
	ErrCodeValidationFailed ErrorCode = "TESTGEN_3003"
	ErrCodeWriteFailed      ErrorCode = "TESTGEN_3004"
	ErrCodeNilTestCase      ErrorCode = "TESTGEN_3005"

	// 清单相关错误 (4000-4999)
	ErrCodeManifestPublish     ErrorCode = "TESTGEN_4000"
	ErrCodeManifestTooLarge    ErrorCode = "TESTGEN_4001"
	ErrCodeManifestNotFound    ErrorCode = "TESTGEN_4002"
	ErrCodeManifestCorrupted   ErrorCode = "TESTGEN_4003"
	ErrCodeCircuitBreakerOpen  ErrorCode = "TESTGEN_4004"
	ErrCodeSerializationFailed ErrorCode = "TESTGEN_4005"
)

// ErrorSeverity 错误严重程度
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
)

// GenError 增强的错误类型
//
// Carries enough identifying context (generator name, parameter values,
// repeat index) to locate the failing declaration in the user's script.
type GenError struct {
	Code        ErrorCode     `json:"code"`
	Message     string        `json:"message"`
	Details     string        `json:"details,omitempty"`
	Severity    ErrorSeverity `json:"severity"`
	Timestamp   time.Time     `json:"timestamp"`
	Generator   string        `json:"generator,omitempty"`
	Params      string        `json:"params,omitempty"`
	RepeatIndex int           `json:"repeat_index,omitempty"`
	Slug        string        `json:"slug,omitempty"`
	StackTrace  string        `json:"stack_trace,omitempty"`
	Cause       error         `json:"-"`
}

// Error 实现 error 接口
func (e *GenError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Generator != "" {
		msg += fmt.Sprintf(" (generator=%s", e.Generator)
		if e.Params != "" {
			msg += fmt.Sprintf(", params=%s", e.Params)
		}
		msg += fmt.Sprintf(", repeat=%d)", e.RepeatIndex)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Unwrap 实现 errors.Unwrap 接口
func (e *GenError) Unwrap() error {
	return e.Cause
}

// Is 实现 errors.Is 接口
func (e *GenError) Is(target error) bool {
	if t, ok := target.(*GenError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithCause 添加原因错误
func (e *GenError) WithCause(cause error) *GenError {
	c := *e
	c.Cause = cause
	return &c
}

// WithDetails 添加详细信息
func (e *GenError) WithDetails(details string) *GenError {
	c := *e
	c.Details = details
	return &c
}

// WithInvocation 添加定位失败声明所需的调用信息
func (e *GenError) WithInvocation(generator, params string, repeatIndex int) *GenError {
	c := *e
	c.Generator = generator
	c.Params = params
	c.RepeatIndex = repeatIndex
	return &c
}

// WithSlug 添加解析后的输出名称
func (e *GenError) WithSlug(slug string) *GenError {
	c := *e
	c.Slug = slug
	return &c
}

// WithStackTrace 添加堆栈跟踪
func (e *GenError) WithStackTrace() *GenError {
	c := *e
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	c.StackTrace = string(buf[:n])
	return &c
}

// NewError 创建新的错误
func NewError(code ErrorCode, message string) *GenError {
	return &GenError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
	}
}

// NewCriticalError 创建严重错误
func NewCriticalError(code ErrorCode, message string) *GenError {
	err := &GenError{
		Code:      code,
		Message:   message,
		Severity:  SeverityCritical,
		Timestamp: time.Now(),
	}
	return err.WithStackTrace()
}

// 预定义的错误实例
var (
	// 系统级错误
	ErrSystemError    = NewCriticalError(ErrCodeSystem, "system error occurred")
	ErrConfigInvalid  = NewCriticalError(ErrCodeConfigInvalid, "configuration is invalid")
	ErrSeedCheckFailed = NewError(ErrCodeSeedCheck, "seed check failed: config seed does not reproduce check value")
	ErrOutputDir      = NewError(ErrCodeOutputDir, "output directory is not usable")

	// 注册相关错误
	ErrDuplicateName   = NewError(ErrCodeDuplicateName, "duplicate generator name")
	ErrInvalidRepeat   = NewError(ErrCodeInvalidRepeat, "invalid repeat: must be between 1 and 10000")
	ErrNilBuilder      = NewError(ErrCodeNilBuilder, "generator builder cannot be nil")
	ErrEmptyName       = NewError(ErrCodeEmptyName, "generator name cannot be empty")
	ErrEmptyCollection = NewError(ErrCodeEmptyCollection, "collection has no registered generators")

	// 生成相关错误
	ErrSlugCollision    = NewError(ErrCodeSlugCollision, "two invocations resolve to the same output slug")
	ErrInvalidSlug      = NewError(ErrCodeInvalidSlug, "resolved slug is empty after sanitization")
	ErrGenerationFailed = NewError(ErrCodeGenerationFailed, "generator callable failed")
	ErrValidationFailed = NewError(ErrCodeValidationFailed, "test case failed its validation check")
	ErrWriteFailed      = NewError(ErrCodeWriteFailed, "failed to write test case file")
	ErrNilTestCase      = NewError(ErrCodeNilTestCase, "generator returned a nil test case")

	// 清单相关错误
	ErrManifestPublishFailed = NewError(ErrCodeManifestPublish, "failed to publish run manifest")
	ErrManifestTooLarge      = NewError(ErrCodeManifestTooLarge, "serialized manifest exceeds maximum allowed size")
	ErrManifestNotFound      = NewError(ErrCodeManifestNotFound, "manifest not found")
	ErrManifestCorrupted     = NewError(ErrCodeManifestCorrupted, "manifest data is corrupted")
	ErrCircuitBreakerOpen    = NewError(ErrCodeCircuitBreakerOpen, "circuit breaker is open")
	ErrSerializationFailed   = NewError(ErrCodeSerializationFailed, "serialization failed")
)
