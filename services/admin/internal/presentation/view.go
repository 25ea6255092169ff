package presentation

import (
	"time"

	"github.com/mallkit/order-admin/services/admin/internal/domain"
)

// OrderView 관리자 화면용 주문 표현
type OrderView struct {
	ID                int64                `json:"id"`
	No                string               `json:"no"`
	Type              domain.OrderType     `json:"type"`
	TypeLabel         string               `json:"typeLabel"`
	TotalAmount       int64                `json:"totalAmount"`
	PaidAt            *time.Time           `json:"paidAt,omitempty"`
	PaymentNo         string               `json:"paymentNo,omitempty"`
	ShipStatus        domain.ShipStatus    `json:"shipStatus"`
	ShipStatusLabel   string               `json:"shipStatusLabel"`
	ShipData          *domain.TrackingInfo `json:"shipData,omitempty"`
	RefundStatus      domain.RefundStatus  `json:"refundStatus"`
	RefundStatusLabel string               `json:"refundStatusLabel"`
	RefundNo          string               `json:"refundNo,omitempty"`
	Extra             map[string]string    `json:"extra,omitempty"`
	Items             []OrderItemView      `json:"items"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// OrderItemView 주문 항목 표현
type OrderItemView struct {
	ProductID int64  `json:"productId"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// ToOrderView 도메인 주문을 화면 표현으로 변환
func ToOrderView(order *domain.Order) *OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	return &OrderView{
		ID:                order.ID,
		No:                order.No,
		Type:              order.Type,
		TypeLabel:         OrderTypeLabel(order.Type),
		TotalAmount:       order.TotalAmount,
		PaidAt:            order.PaidAt,
		PaymentNo:         order.PaymentNo,
		ShipStatus:        order.ShipStatus,
		ShipStatusLabel:   ShipStatusLabel(order.ShipStatus),
		ShipData:          order.ShipData,
		RefundStatus:      order.RefundStatus,
		RefundStatusLabel: RefundStatusLabel(order.RefundStatus),
		RefundNo:          order.RefundNo,
		Extra:             order.Extra,
		Items:             items,
		UpdatedAt:         order.UpdatedAt,
	}
}

// ToOrderViews 주문 목록 변환
func ToOrderViews(orders []*domain.Order) []*OrderView {
	views := make([]*OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, ToOrderView(order))
	}
	return views
}
