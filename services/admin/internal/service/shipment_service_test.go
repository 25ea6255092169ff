package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/common/events"
	"github.com/mallkit/order-admin/common/logger"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
)

func newShipmentService(repo *fakeOrderRepo, campaign domain.CampaignStatus) ShipmentService {
	return NewShipmentService(repo, &fakeCampaignRepo{status: campaign}, logger.NewTestLogger())
}

func TestShipmentService_Ship_ValidatesTrackingInfo(t *testing.T) {
	repo := newFakeOrderRepo(testOrder(1))
	svc := newShipmentService(repo, domain.CampaignStatusSuccess)

	tests := []struct {
		name    string
		cmd     ShipOrderCommand
		missing string
	}{
		{"missing both", ShipOrderCommand{OrderID: 1}, "carrier_name, tracking_no"},
		{"missing carrier", ShipOrderCommand{OrderID: 1, TrackingNo: "123"}, "carrier_name"},
		{"missing tracking no", ShipOrderCommand{OrderID: 1, CarrierName: "SF"}, "tracking_no"},
		{"blank values", ShipOrderCommand{OrderID: 1, CarrierName: "  ", TrackingNo: "123"}, "carrier_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ship(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}

	// 검증 실패 시 상태 변경 없음
	assert.Equal(t, domain.ShipStatusPending, repo.stored(1).ShipStatus)
}

func TestShipmentService_Ship_OrderNotFound(t *testing.T) {
	svc := newShipmentService(newFakeOrderRepo(), domain.CampaignStatusSuccess)

	_, err := svc.Ship(context.Background(), ShipOrderCommand{OrderID: 99, CarrierName: "SF", TrackingNo: "123"})
	assert.Equal(t, errors.ErrCodeOrderNotFound, errors.CodeOf(err))
}

func TestShipmentService_Ship_BusinessRules(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(o *domain.Order)
		campaign domain.CampaignStatus
		wantCode errors.ErrorCode
	}{
		{
			name:     "unpaid order",
			modify:   func(o *domain.Order) { o.PaidAt = nil },
			campaign: domain.CampaignStatusSuccess,
			wantCode: errors.ErrCodeNotPaid,
		},
		{
			name:     "already delivered",
			modify:   func(o *domain.Order) { o.ShipStatus = domain.ShipStatusDelivered },
			campaign: domain.CampaignStatusSuccess,
			wantCode: errors.ErrCodeAlreadyShipped,
		},
		{
			name:     "crowdfunding not successful",
			modify:   func(o *domain.Order) { o.Type = domain.OrderTypeCrowdfunding },
			campaign: domain.CampaignStatusFunding,
			wantCode: errors.ErrCodeCrowdfundingNotSuccessful,
		},
		{
			name:     "crowdfunding without items",
			modify:   func(o *domain.Order) { o.Type = domain.OrderTypeCrowdfunding; o.Items = nil },
			campaign: domain.CampaignStatusSuccess,
			wantCode: errors.ErrCodeCrowdfundingNotSuccessful,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder(1)
			tt.modify(order)
			repo := newFakeOrderRepo(order)
			svc := newShipmentService(repo, tt.campaign)

			_, err := svc.Ship(context.Background(), ShipOrderCommand{OrderID: 1, CarrierName: "SF", TrackingNo: "123"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Empty(t, repo.outbox)
		})
	}
}

func TestShipmentService_Ship_Success(t *testing.T) {
	repo := newFakeOrderRepo(testOrder(1))
	svc := newShipmentService(repo, domain.CampaignStatusSuccess)

	shipped, err := svc.Ship(context.Background(), ShipOrderCommand{OrderID: 1, CarrierName: "SF", TrackingNo: "123"})
	require.NoError(t, err)

	assert.Equal(t, domain.ShipStatusDelivered, shipped.ShipStatus)
	require.NotNil(t, shipped.ShipData)
	assert.Equal(t, "SF", shipped.ShipData.CarrierName)
	assert.Equal(t, "123", shipped.ShipData.TrackingNo)

	// 저장 상태와 outbox가 함께 갱신된다
	stored := repo.stored(1)
	assert.Equal(t, domain.ShipStatusDelivered, stored.ShipStatus)
	assert.Equal(t, int64(2), stored.Version)
	require.Len(t, repo.outbox, 1)
	assert.Equal(t, string(events.EventOrderShipped), repo.outbox[0].EventType)

	// 발송은 정확히 한 번만 가능
	_, err = svc.Ship(context.Background(), ShipOrderCommand{OrderID: 1, CarrierName: "SF", TrackingNo: "123"})
	assert.Equal(t, errors.ErrCodeAlreadyShipped, errors.CodeOf(err))
	assert.Len(t, repo.outbox, 1)
}

func TestShipmentService_Ship_CrowdfundingSuccess(t *testing.T) {
	order := testOrder(1)
	order.Type = domain.OrderTypeCrowdfunding
	repo := newFakeOrderRepo(order)
	svc := newShipmentService(repo, domain.CampaignStatusSuccess)

	_, err := svc.Ship(context.Background(), ShipOrderCommand{OrderID: 1, CarrierName: "SF", TrackingNo: "123"})
	require.NoError(t, err)
	assert.Equal(t, domain.ShipStatusDelivered, repo.stored(1).ShipStatus)
}

func TestShipmentService_Ship_ConcurrentModification(t *testing.T) {
	repo := newFakeOrderRepo(testOrder(1))
	repo.conflictOnce = true
	svc := newShipmentService(repo, domain.CampaignStatusSuccess)

	_, err := svc.Ship(context.Background(), ShipOrderCommand{OrderID: 1, CarrierName: "SF", TrackingNo: "123"})
	assert.Equal(t, errors.ErrCodeConcurrentModification, errors.CodeOf(err))

	// 충돌 시 저장 상태는 그대로, outbox도 비어 있다
	assert.Equal(t, domain.ShipStatusPending, repo.stored(1).ShipStatus)
	assert.Empty(t, repo.outbox)

	// 재조회 후 재시도는 성공
	_, err = svc.Ship(context.Background(), ShipOrderCommand{OrderID: 1, CarrierName: "SF", TrackingNo: "123"})
	assert.NoError(t, err)
}

func TestShipmentService_ConfirmReceived(t *testing.T) {
	order := testOrder(1)
	repo := newFakeOrderRepo(order)
	svc := newShipmentService(repo, domain.CampaignStatusSuccess)

	// 배송 전에는 수취 확인 불가
	_, err := svc.ConfirmReceived(context.Background(), 1)
	assert.Equal(t, errors.ErrCodeNotDelivered, errors.CodeOf(err))

	_, err = svc.Ship(context.Background(), ShipOrderCommand{OrderID: 1, CarrierName: "SF", TrackingNo: "123"})
	require.NoError(t, err)

	received, err := svc.ConfirmReceived(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipStatusReceived, received.ShipStatus)
	assert.Equal(t, domain.ShipStatusReceived, repo.stored(1).ShipStatus)
}
