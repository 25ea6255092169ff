package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/common/events"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
	"github.com/mallkit/order-admin/services/admin/internal/gateway"
	"github.com/mallkit/order-admin/services/admin/internal/metrics"
	"github.com/mallkit/order-admin/services/admin/internal/repository"
)

// DecideRefundCommand 환불 결정 커맨드
type DecideRefundCommand struct {
	OrderID int64
	Agree   bool
	Reason  string
}

// RefundService 환불 서비스 인터페이스
type RefundService interface {
	DecideRefund(ctx context.Context, cmd DecideRefundCommand) (*domain.Order, error)
	HandleGatewayResult(ctx context.Context, orderNo string, status domain.RefundStatus, refundNo string) error
}

type refundService struct {
	orderRepo repository.OrderRepository
	gateway   gateway.RefundGateway
	logger    *zap.Logger
}

// NewRefundService 환불 서비스 생성
func NewRefundService(
	orderRepo repository.OrderRepository,
	refundGateway gateway.RefundGateway,
	logger *zap.Logger,
) RefundService {
	return &refundService{
		orderRepo: orderRepo,
		gateway:   refundGateway,
		logger:    logger,
	}
}

// DecideRefund 환불 요청 승인/거절 처리
func (s *refundService) DecideRefund(ctx context.Context, cmd DecideRefundCommand) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.CanDecideRefund(); err != nil {
		return nil, err
	}

	if cmd.Agree {
		return s.approve(ctx, order)
	}
	return s.reject(ctx, order, cmd.Reason)
}

// approve 환불 승인: 거절 사유 제거 후 게이트웨이 호출, 결과를 원자적으로 영속화
func (s *refundService) approve(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	now := time.Now()
	order.ApproveRefund(now)

	// 게이트웨이 일시 장애 시 주문은 APPLIED로 남아 재시도 가능하다.
	// 재시도 정책은 호출자/게이트웨이 소관이며 여기서 자동 재시도하지 않는다.
	result, err := s.gateway.Refund(ctx, order)
	if err != nil {
		metrics.RefundGatewayFailuresTotal.Inc()
		s.logger.Warn("refund gateway call failed, order left actionable",
			zap.Int64("orderId", order.ID),
			zap.String("orderNo", order.No),
			zap.Error(err))
		return nil, err
	}

	order.ApplyRefundResult(result.Status, result.RefundNo, now)

	event, err := newOutboxEvent(order, events.EventRefundApproved, events.RefundApprovedEvent{
		BaseEvent: newBaseEvent(events.EventRefundApproved, now),
		OrderID:   order.ID,
		OrderNo:   order.No,
		RefundNo:  order.RefundNo,
		Amount:    order.TotalAmount,
		Status:    string(order.RefundStatus),
	})
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateRefund(ctx, order, event)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 게이트웨이는 주문번호 기준 멱등이므로 재시도 시 이중 환불은 발생하지 않는다
		metrics.VersionConflictsTotal.Inc()
		return nil, errors.New(errors.ErrCodeConcurrentModification, "order was modified concurrently")
	}

	metrics.RefundDecisionsTotal.WithLabelValues("approve").Inc()
	s.logger.Info("refund approved",
		zap.Int64("orderId", order.ID),
		zap.String("orderNo", order.No),
		zap.String("refundNo", order.RefundNo),
		zap.String("refundStatus", string(order.RefundStatus)))

	return order, nil
}

// reject 환불 거절: 사유를 extra에 기록하고 활성 요청을 종료
func (s *refundService) reject(ctx context.Context, order *domain.Order, reason string) (*domain.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "missing required fields: reason")
	}

	now := time.Now()
	order.RejectRefund(reason, now)

	event, err := newOutboxEvent(order, events.EventRefundRejected, events.RefundRejectedEvent{
		BaseEvent: newBaseEvent(events.EventRefundRejected, now),
		OrderID:   order.ID,
		OrderNo:   order.No,
		Reason:    reason,
	})
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateRefund(ctx, order, event)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.VersionConflictsTotal.Inc()
		return nil, errors.New(errors.ErrCodeConcurrentModification, "order was modified concurrently")
	}

	metrics.RefundDecisionsTotal.WithLabelValues("reject").Inc()
	s.logger.Info("refund rejected",
		zap.Int64("orderId", order.ID),
		zap.String("orderNo", order.No),
		zap.String("reason", reason))

	return order, nil
}

// HandleGatewayResult 게이트웨이의 비동기 환불 결과 반영
// 이미 최종 상태인 주문에 대해서는 아무것도 하지 않는다 (멱등).
func (s *refundService) HandleGatewayResult(ctx context.Context, orderNo string, status domain.RefundStatus, refundNo string) error {
	if status != domain.RefundStatusSuccess && status != domain.RefundStatusFailed {
		return errors.Newf(errors.ErrCodeValidation, "unexpected gateway refund status %q", status)
	}

	order, err := s.orderRepo.FindByNo(ctx, orderNo)
	if err != nil {
		return err
	}

	if order.IsRefundFinal() {
		s.logger.Info("refund already final, ignoring gateway result",
			zap.String("orderNo", orderNo),
			zap.String("refundStatus", string(order.RefundStatus)))
		return nil
	}

	// APPLIED 상태에서 결과가 도착하는 경우는 게이트웨이 호출 후 영속화 전에
	// 프로세스가 중단된 장애 창이다. 게이트웨이가 진실의 원천이므로 그대로 반영한다.
	if order.RefundStatus != domain.RefundStatusProcessing && order.RefundStatus != domain.RefundStatusApplied {
		s.logger.Warn("gateway result for order without refund in flight",
			zap.String("orderNo", orderNo),
			zap.String("refundStatus", string(order.RefundStatus)))
		return nil
	}

	now := time.Now()
	order.ApplyRefundResult(status, refundNo, now)

	event, err := newOutboxEvent(order, events.EventRefundCompleted, events.RefundCompletedEvent{
		BaseEvent: newBaseEvent(events.EventRefundCompleted, now),
		OrderID:   order.ID,
		OrderNo:   order.No,
		RefundNo:  order.RefundNo,
		Status:    string(status),
	})
	if err != nil {
		return err
	}

	ok, err := s.orderRepo.UpdateRefund(ctx, order, event)
	if err != nil {
		return err
	}
	if !ok {
		metrics.VersionConflictsTotal.Inc()
		return errors.New(errors.ErrCodeConcurrentModification, "order was modified concurrently")
	}

	s.logger.Info("refund finalized",
		zap.String("orderNo", orderNo),
		zap.String("refundNo", order.RefundNo),
		zap.String("refundStatus", string(status)))

	return nil
}
