package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
)

// Result 게이트웨이 환불 결과
type Result struct {
	Status   domain.RefundStatus // PROCESSING | SUCCESS | FAILED
	RefundNo string
}

// RefundGateway 외부 환불 게이트웨이 인터페이스
//
// Refund는 주문번호 기준으로 멱등해야 한다. 같은 주문에 대해 두 번 호출해도
// 환불은 한 번만 실행된다. QueryRefund는 읽기 전용이며, 게이트웨이에 해당
// 주문의 환불 기록이 없으면 (nil, nil)을 반환한다.
type RefundGateway interface {
	Refund(ctx context.Context, order *domain.Order) (*Result, error)
	QueryRefund(ctx context.Context, orderNo string) (*Result, error)
}

// HTTPRefundGateway HTTP 기반 환불 게이트웨이 어댑터
type HTTPRefundGateway struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPRefundGateway HTTP 환불 게이트웨이 생성
func NewHTTPRefundGateway(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPRefundGateway {
	return &HTTPRefundGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type refundRequest struct {
	OrderNo string `json:"orderNo"`
	Amount  int64  `json:"amount"`
}

type refundResponse struct {
	Status   string `json:"status"` // processing | success | failed
	RefundNo string `json:"refundNo"`
	Message  string `json:"message,omitempty"`
}

// Refund 환불 실행 요청
// 타임아웃과 5xx는 일시 장애(REFUND_GATEWAY_ERROR)로, 명시적 거절은
// FAILED 결과로 구분한다. 성공을 가정하는 경우는 없다.
func (g *HTTPRefundGateway) Refund(ctx context.Context, order *domain.Order) (*Result, error) {
	body, err := json.Marshal(refundRequest{
		OrderNo: order.No,
		Amount:  order.TotalAmount,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerializationError, "failed to marshal refund request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/refunds", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRefundGatewayError, "failed to build refund request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	// 게이트웨이 측 멱등성 키: 주문번호
	req.Header.Set("Idempotency-Key", order.No)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("refund gateway call failed",
			zap.String("orderNo", order.No),
			zap.Error(err))
		return nil, errors.Wrap(errors.ErrCodeRefundGatewayError, "refund request failed", err)
	}
	defer resp.Body.Close()

	return g.decodeResult(resp, order.No)
}

// QueryRefund 환불 상태 조회 (읽기 전용)
func (g *HTTPRefundGateway) QueryRefund(ctx context.Context, orderNo string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1/refunds/%s", g.baseURL, orderNo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRefundGatewayError, "failed to build query request", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRefundGatewayError, "refund query failed", err)
	}
	defer resp.Body.Close()

	// 환불 기록 없음
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	return g.decodeResult(resp, orderNo)
}

func (g *HTTPRefundGateway) decodeResult(resp *http.Response, orderNo string) (*Result, error) {
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, errors.Newf(errors.ErrCodeRefundGatewayError, "refund gateway returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
		return nil, errors.Newf(errors.ErrCodeRefundGatewayError, "unexpected refund gateway status %d", resp.StatusCode)
	}

	var body refundResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRefundGatewayError, "failed to decode refund response", err)
	}

	switch body.Status {
	case "processing":
		return &Result{Status: domain.RefundStatusProcessing, RefundNo: body.RefundNo}, nil
	case "success":
		return &Result{Status: domain.RefundStatusSuccess, RefundNo: body.RefundNo}, nil
	case "failed":
		// 영구 거절: 재시도 대상이 아니므로 결과로 반환
		g.logger.Warn("refund declined by gateway",
			zap.String("orderNo", orderNo),
			zap.String("message", body.Message))
		return &Result{Status: domain.RefundStatusFailed, RefundNo: body.RefundNo}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeRefundGatewayError, "unknown refund status %q", body.Status)
	}
}
