package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/common/events"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
	"github.com/mallkit/order-admin/services/admin/internal/metrics"
	"github.com/mallkit/order-admin/services/admin/internal/repository"
)

// ShipOrderCommand 발송 커맨드
type ShipOrderCommand struct {
	OrderID     int64
	CarrierName string
	TrackingNo  string
}

// ShipmentService 발송 서비스 인터페이스
type ShipmentService interface {
	Ship(ctx context.Context, cmd ShipOrderCommand) (*domain.Order, error)
	ConfirmReceived(ctx context.Context, orderID int64) (*domain.Order, error)
}

type shipmentService struct {
	orderRepo    repository.OrderRepository
	campaignRepo repository.CampaignStatusLookup
	logger       *zap.Logger
}

// NewShipmentService 발송 서비스 생성
func NewShipmentService(
	orderRepo repository.OrderRepository,
	campaignRepo repository.CampaignStatusLookup,
	logger *zap.Logger,
) ShipmentService {
	return &shipmentService{
		orderRepo:    orderRepo,
		campaignRepo: campaignRepo,
		logger:       logger,
	}
}

// Ship 주문 발송 처리
func (s *shipmentService) Ship(ctx context.Context, cmd ShipOrderCommand) (*domain.Order, error) {
	// 입력 검증: 누락된 필드를 모아 하나의 에러로 반환
	var missing []string
	if strings.TrimSpace(cmd.CarrierName) == "" {
		missing = append(missing, "carrier_name")
	}
	if strings.TrimSpace(cmd.TrackingNo) == "" {
		missing = append(missing, "tracking_no")
	}
	if len(missing) > 0 {
		return nil, errors.Newf(errors.ErrCodeValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}

	order, err := s.orderRepo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	// 크라우드펀딩 주문은 캠페인 상태 조회 후 검증
	campaign := domain.CampaignStatusSuccess
	if order.Type == domain.OrderTypeCrowdfunding {
		productID, ok := order.FirstProductID()
		if !ok {
			return nil, errors.New(errors.ErrCodeCrowdfundingNotSuccessful, "crowdfunding order has no product")
		}
		campaign, err = s.campaignRepo.StatusOf(ctx, productID)
		if err != nil {
			return nil, err
		}
	}

	if err := order.CanShip(campaign); err != nil {
		return nil, err
	}

	now := time.Now()
	order.Ship(domain.TrackingInfo{
		CarrierName: cmd.CarrierName,
		TrackingNo:  cmd.TrackingNo,
	}, now)

	event, err := newOutboxEvent(order, events.EventOrderShipped, events.OrderShippedEvent{
		BaseEvent:   newBaseEvent(events.EventOrderShipped, now),
		OrderID:     order.ID,
		OrderNo:     order.No,
		CarrierName: cmd.CarrierName,
		TrackingNo:  cmd.TrackingNo,
	})
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateShipment(ctx, order, event)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.VersionConflictsTotal.Inc()
		return nil, errors.New(errors.ErrCodeConcurrentModification, "order was modified concurrently")
	}

	metrics.ShipmentsTotal.Inc()
	s.logger.Info("order shipped",
		zap.Int64("orderId", order.ID),
		zap.String("orderNo", order.No),
		zap.String("carrierName", cmd.CarrierName),
		zap.String("trackingNo", cmd.TrackingNo))

	return order, nil
}

// ConfirmReceived 수취 확인 처리
func (s *shipmentService) ConfirmReceived(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.ConfirmReceived(time.Now()); err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateShipment(ctx, order, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.VersionConflictsTotal.Inc()
		return nil, errors.New(errors.ErrCodeConcurrentModification, "order was modified concurrently")
	}

	s.logger.Info("order receipt confirmed", zap.Int64("orderId", order.ID))
	return order, nil
}

// newBaseEvent 이벤트 공통 필드 생성
func newBaseEvent(eventType events.EventType, now time.Time) events.BaseEvent {
	return events.BaseEvent{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		SchemaVersion: 1,
		OccurredAt:    now,
		CorrelationID: uuid.New().String(),
	}
}

// newOutboxEvent 도메인 이벤트를 outbox 레코드로 직렬화
func newOutboxEvent(order *domain.Order, eventType events.EventType, event interface{}) (*repository.OutboxEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerializationError, "failed to marshal event", err)
	}

	return &repository.OutboxEvent{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
		Status:        "PENDING",
		CreatedAt:     time.Now(),
	}, nil
}
