package errors

import "fmt"

// ErrorCode 에러 코드 정의
type ErrorCode string

const (
	// Validation Errors
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// Business Errors (재시도 불가, 호출자에게 그대로 전달)
	ErrCodeNotPaid                   ErrorCode = "NOT_PAID"
	ErrCodeAlreadyShipped            ErrorCode = "ALREADY_SHIPPED"
	ErrCodeNotDelivered              ErrorCode = "NOT_DELIVERED"
	ErrCodeCrowdfundingNotSuccessful ErrorCode = "CROWDFUNDING_NOT_SUCCESSFUL"
	ErrCodeNoActiveRefundRequest     ErrorCode = "NO_ACTIVE_REFUND_REQUEST"

	// Concurrency Errors (호출자가 재조회 후 전체 연산을 재시도)
	ErrCodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"

	// Not Found
	ErrCodeOrderNotFound ErrorCode = "ORDER_NOT_FOUND"

	// External / Technical Errors
	ErrCodeRefundGatewayError ErrorCode = "REFUND_GATEWAY_ERROR"
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrCodeSerializationError ErrorCode = "SERIALIZATION_ERROR"
	ErrCodeTimeoutError       ErrorCode = "TIMEOUT_ERROR"
	ErrCodeUnknownError       ErrorCode = "UNKNOWN_ERROR"
)

// DomainError 도메인 에러 구조체
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// New 새로운 도메인 에러 생성
func New(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Newf 포맷 문자열로 도메인 에러 생성
func Newf(code ErrorCode, format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap 기존 에러를 래핑한 도메인 에러 생성
func Wrap(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf 에러에서 코드 추출 (도메인 에러가 아니면 UNKNOWN_ERROR)
func CodeOf(err error) ErrorCode {
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr.Code
	}
	return ErrCodeUnknownError
}

// IsCode 에러가 특정 코드를 가지는지 확인
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable 재시도 가능한 에러인지 판단
func IsRetryable(err error) bool {
	if domainErr, ok := err.(*DomainError); ok {
		switch domainErr.Code {
		case ErrCodeRefundGatewayError, ErrCodeDatabaseError, ErrCodeTimeoutError:
			return true
		}
	}
	return false
}

// IsBusinessError 비즈니스 에러인지 판단 (재시도 불필요)
func IsBusinessError(err error) bool {
	if domainErr, ok := err.(*DomainError); ok {
		switch domainErr.Code {
		case ErrCodeNotPaid, ErrCodeAlreadyShipped, ErrCodeNotDelivered,
			ErrCodeCrowdfundingNotSuccessful, ErrCodeNoActiveRefundRequest:
			return true
		}
	}
	return false
}
