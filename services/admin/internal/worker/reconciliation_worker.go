package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mallkit/order-admin/common/retry"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
	"github.com/mallkit/order-admin/services/admin/internal/gateway"
	"github.com/mallkit/order-admin/services/admin/internal/repository"
	"github.com/mallkit/order-admin/services/admin/internal/service"
)

// ReconciliationWorker 환불 대사 워커
//
// 게이트웨이 호출 성공 후 영속화 전에 프로세스가 중단되면 주문은 APPLIED로,
// 비동기 환불의 콜백이 유실되면 PROCESSING으로 남는다. 이 워커는 오래 머문
// 주문을 주기적으로 찾아 게이트웨이에 실제 상태를 조회하고 그대로 반영한다.
type ReconciliationWorker struct {
	orderRepo     repository.OrderRepository
	refundGateway gateway.RefundGateway
	refundService service.RefundService
	logger        *zap.Logger
	interval      time.Duration
	stuckAfter    time.Duration
}

// NewReconciliationWorker 대사 워커 생성
func NewReconciliationWorker(
	orderRepo repository.OrderRepository,
	refundGateway gateway.RefundGateway,
	refundService service.RefundService,
	logger *zap.Logger,
	interval time.Duration,
	stuckAfter time.Duration,
) *ReconciliationWorker {
	return &ReconciliationWorker{
		orderRepo:     orderRepo,
		refundGateway: refundGateway,
		refundService: refundService,
		logger:        logger,
		interval:      interval,
		stuckAfter:    stuckAfter,
	}
}

// Start 워커 시작
func (w *ReconciliationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("reconciliation worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("stuckAfter", w.stuckAfter))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reconciliation worker stopped")
			return
		case <-ticker.C:
			if err := w.process(ctx); err != nil {
				w.logger.Error("reconciliation failed", zap.Error(err))
			}
		}
	}
}

func (w *ReconciliationWorker) process(ctx context.Context) error {
	orders, err := w.orderRepo.FindStuckRefunds(ctx, w.stuckAfter, 50)
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		return nil
	}

	w.logger.Info("found stuck refunds", zap.Int("count", len(orders)))

	retryConfig := retry.Config{
		MaxAttempts:        3,
		InitialInterval:    time.Second,
		MaxInterval:        10 * time.Second,
		BackoffCoefficient: 2.0,
		MaxElapsedTime:     30 * time.Second,
	}

	for _, order := range orders {
		orderNo := order.No

		// 읽기 전용 조회이므로 백오프 재시도 가능
		result, err := retry.DoWithResult(ctx, retryConfig, w.logger, func() (*gateway.Result, error) {
			return w.refundGateway.QueryRefund(ctx, orderNo)
		})
		if err != nil {
			w.logger.Warn("failed to query refund status, will retry next tick",
				zap.String("orderNo", orderNo),
				zap.Error(err))
			continue
		}

		// 게이트웨이에 환불 기록 없음: 승인 요청이 도달하지 않은 경우이므로 그대로 둔다
		if result == nil {
			continue
		}

		if result.Status != domain.RefundStatusSuccess && result.Status != domain.RefundStatusFailed {
			// 아직 게이트웨이 측 처리 중
			continue
		}

		if err := w.refundService.HandleGatewayResult(ctx, orderNo, result.Status, result.RefundNo); err != nil {
			w.logger.Error("failed to apply reconciled refund result",
				zap.String("orderNo", orderNo),
				zap.Error(err))
			continue
		}

		w.logger.Info("refund reconciled",
			zap.String("orderNo", orderNo),
			zap.String("refundStatus", string(result.Status)))
	}

	return nil
}
