package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := New(ErrCodeNotPaid, "order is not paid")
	assert.Equal(t, "[NOT_PAID] order is not paid", err.Error())

	cause := stderrors.New("connection refused")
	wrapped := Wrap(ErrCodeRefundGatewayError, "refund request failed", cause)
	assert.Equal(t, "[REFUND_GATEWAY_ERROR] refund request failed: connection refused", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, cause))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeAlreadyShipped, CodeOf(New(ErrCodeAlreadyShipped, "already shipped")))
	assert.Equal(t, ErrCodeUnknownError, CodeOf(stderrors.New("plain error")))
	assert.True(t, IsCode(New(ErrCodeOrderNotFound, "not found"), ErrCodeOrderNotFound))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeRefundGatewayError, true},
		{ErrCodeDatabaseError, true},
		{ErrCodeTimeoutError, true},
		{ErrCodeNotPaid, false},
		{ErrCodeConcurrentModification, false},
		{ErrCodeValidation, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(New(tt.code, "test")))
		})
	}

	assert.False(t, IsRetryable(stderrors.New("plain error")))
}

func TestIsBusinessError(t *testing.T) {
	for _, code := range []ErrorCode{
		ErrCodeNotPaid,
		ErrCodeAlreadyShipped,
		ErrCodeNotDelivered,
		ErrCodeCrowdfundingNotSuccessful,
		ErrCodeNoActiveRefundRequest,
	} {
		assert.True(t, IsBusinessError(New(code, "test")), string(code))
	}

	assert.False(t, IsBusinessError(New(ErrCodeRefundGatewayError, "test")))
	assert.False(t, IsBusinessError(New(ErrCodeValidation, "test")))
}
