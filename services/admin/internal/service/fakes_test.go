package service

import (
	"context"
	"time"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
	"github.com/mallkit/order-admin/services/admin/internal/gateway"
	"github.com/mallkit/order-admin/services/admin/internal/repository"
)

// fakeOrderRepo 인메모리 주문 레포지토리
// 조회 시 복사본을 반환하여, 커밋 전 변경이 저장 상태에 보이지 않게 한다.
type fakeOrderRepo struct {
	orders       map[int64]*domain.Order
	outbox       []*repository.OutboxEvent
	conflictOnce bool
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: make(map[int64]*domain.Order)}
	for _, o := range orders {
		repo.orders[o.ID] = cloneOrder(o)
	}
	return repo
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	if o.ShipData != nil {
		shipData := *o.ShipData
		clone.ShipData = &shipData
	}
	if o.Extra != nil {
		clone.Extra = make(map[string]string, len(o.Extra))
		for k, v := range o.Extra {
			clone.Extra[k] = v
		}
	}
	clone.Items = append([]domain.OrderItem(nil), o.Items...)
	return &clone
}

func (r *fakeOrderRepo) stored(id int64) *domain.Order {
	return r.orders[id]
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeOrderNotFound, "order not found")
	}
	return cloneOrder(order), nil
}

func (r *fakeOrderRepo) FindByNo(ctx context.Context, no string) (*domain.Order, error) {
	for _, order := range r.orders {
		if order.No == no {
			return cloneOrder(order), nil
		}
	}
	return nil, errors.New(errors.ErrCodeOrderNotFound, "order not found")
}

func (r *fakeOrderRepo) ListPaid(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range r.orders {
		if order.PaidAt != nil {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) FindStuckRefunds(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range r.orders {
		switch order.RefundStatus {
		case domain.RefundStatusApplied, domain.RefundStatusProcessing:
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) UpdateShipment(ctx context.Context, order *domain.Order, event *repository.OutboxEvent) (bool, error) {
	return r.update(order, event)
}

func (r *fakeOrderRepo) UpdateRefund(ctx context.Context, order *domain.Order, event *repository.OutboxEvent) (bool, error) {
	return r.update(order, event)
}

func (r *fakeOrderRepo) update(order *domain.Order, event *repository.OutboxEvent) (bool, error) {
	if r.conflictOnce {
		r.conflictOnce = false
		return false, nil
	}

	stored, ok := r.orders[order.ID]
	if !ok || stored.Version != order.Version {
		return false, nil
	}

	order.Version++
	r.orders[order.ID] = cloneOrder(order)
	if event != nil {
		r.outbox = append(r.outbox, event)
	}
	return true, nil
}

// fakeCampaignRepo 고정 상태를 반환하는 캠페인 조회
type fakeCampaignRepo struct {
	status domain.CampaignStatus
}

func (r *fakeCampaignRepo) StatusOf(ctx context.Context, productID int64) (domain.CampaignStatus, error) {
	return r.status, nil
}

// fakeRefundGateway 설정된 결과를 반환하는 환불 게이트웨이
type fakeRefundGateway struct {
	result      *gateway.Result
	err         error
	refundCalls int
	queryCalls  int
}

func (g *fakeRefundGateway) Refund(ctx context.Context, order *domain.Order) (*gateway.Result, error) {
	g.refundCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *fakeRefundGateway) QueryRefund(ctx context.Context, orderNo string) (*gateway.Result, error) {
	g.queryCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func testOrder(id int64) *domain.Order {
	paidAt := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:           id,
		No:           "202511010001",
		UserID:       7,
		Type:         domain.OrderTypeNormal,
		TotalAmount:  19900,
		PaidAt:       &paidAt,
		ShipStatus:   domain.ShipStatusPending,
		RefundStatus: domain.RefundStatusNone,
		Items:        []domain.OrderItem{{ID: 1, OrderID: id, ProductID: 42, Title: "상품", Price: 19900, Quantity: 1}},
		Version:      1,
	}
}
