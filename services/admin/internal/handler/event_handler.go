package handler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/common/events"
	"github.com/mallkit/order-admin/common/idempotency"
	"github.com/mallkit/order-admin/common/messaging"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
	"github.com/mallkit/order-admin/services/admin/internal/service"
)

// EventHandler 게이트웨이 환불 결과 이벤트 핸들러
type EventHandler struct {
	refundService service.RefundService
	idemStore     idempotency.Store
	logger        *zap.Logger
}

// NewEventHandler 이벤트 핸들러 생성
func NewEventHandler(
	refundService service.RefundService,
	idemStore idempotency.Store,
	logger *zap.Logger,
) *EventHandler {
	return &EventHandler{
		refundService: refundService,
		idemStore:     idemStore,
		logger:        logger,
	}
}

// HandleMessage 메시지 처리
func (h *EventHandler) HandleMessage(ctx context.Context, msg *messaging.Message) error {
	h.logger.Info("received message",
		zap.String("topic", msg.Topic),
		zap.Int64("offset", msg.Offset))

	switch events.EventType(msg.Topic) {
	case events.EventRefundGatewayResult:
		return h.handleRefundGatewayResult(ctx, msg)
	default:
		h.logger.Warn("unknown event type", zap.String("topic", msg.Topic))
		return nil
	}
}

func (h *EventHandler) handleRefundGatewayResult(ctx context.Context, msg *messaging.Message) error {
	var evt events.RefundGatewayResultEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return errors.Wrap(errors.ErrCodeSerializationError, "failed to unmarshal gateway result event", err)
	}

	// 멱등성 체크
	if processed, _ := h.idemStore.IsProcessed(ctx, evt.EventID); processed {
		h.logger.Info("event already processed", zap.String("eventId", evt.EventID))
		return nil
	}

	status := domain.RefundStatus(evt.Status)
	if err := h.refundService.HandleGatewayResult(ctx, evt.OrderNo, status, evt.RefundNo); err != nil {
		return err
	}

	// 처리 완료 표시
	_, _ = h.idemStore.Reserve(ctx, evt.EventID, 24*time.Hour)
	return nil
}
