package events

import "time"

// EventType 이벤트 타입 정의
type EventType string

const (
	// Shipment Events
	EventOrderShipped EventType = "order.shipped.v1"

	// Refund Events
	EventRefundApproved  EventType = "refund.approved.v1"
	EventRefundRejected  EventType = "refund.rejected.v1"
	EventRefundCompleted EventType = "refund.completed.v1"

	// 외부 결제 게이트웨이가 발행하는 비동기 환불 결과 이벤트
	EventRefundGatewayResult EventType = "refund.gateway.result.v1"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	EventID       string    `json:"eventId"`
	EventType     EventType `json:"eventType"`
	SchemaVersion int       `json:"schemaVersion"`
	OccurredAt    time.Time `json:"occurredAt"`
	CorrelationID string    `json:"correlationId"`
}

// OrderShippedEvent 주문 발송 이벤트
type OrderShippedEvent struct {
	BaseEvent
	OrderID     int64  `json:"orderId"`
	OrderNo     string `json:"orderNo"`
	CarrierName string `json:"carrierName"`
	TrackingNo  string `json:"trackingNo"`
}

// RefundApprovedEvent 환불 승인 이벤트
type RefundApprovedEvent struct {
	BaseEvent
	OrderID  int64  `json:"orderId"`
	OrderNo  string `json:"orderNo"`
	RefundNo string `json:"refundNo"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
}

// RefundRejectedEvent 환불 거절 이벤트
type RefundRejectedEvent struct {
	BaseEvent
	OrderID int64  `json:"orderId"`
	OrderNo string `json:"orderNo"`
	Reason  string `json:"reason"`
}

// RefundCompletedEvent 환불 최종 결과 이벤트
type RefundCompletedEvent struct {
	BaseEvent
	OrderID  int64  `json:"orderId"`
	OrderNo  string `json:"orderNo"`
	RefundNo string `json:"refundNo"`
	Status   string `json:"status"`
}

// RefundGatewayResultEvent 게이트웨이 환불 결과 이벤트 (수신용)
type RefundGatewayResultEvent struct {
	BaseEvent
	OrderNo  string `json:"orderNo"`
	RefundNo string `json:"refundNo"`
	Status   string `json:"status"` // SUCCESS | FAILED
}
