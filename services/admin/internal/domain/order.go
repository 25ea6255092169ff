package domain

import (
	"time"

	"github.com/mallkit/order-admin/common/errors"
)

// OrderType 주문 유형
type OrderType string

const (
	OrderTypeNormal       OrderType = "NORMAL"
	OrderTypeCrowdfunding OrderType = "CROWDFUNDING"
	OrderTypeSeckill      OrderType = "SECKILL"
)

// ShipStatus 배송 상태 (단조 증가, 역전 불가)
type ShipStatus string

const (
	ShipStatusPending   ShipStatus = "PENDING"
	ShipStatusDelivered ShipStatus = "DELIVERED"
	ShipStatusReceived  ShipStatus = "RECEIVED"
)

// RefundStatus 환불 상태
// REJECTED는 "환불 거절됨, 활성 요청 없음"을 의미한다. 고객이 외부 플로우에서
// 다시 신청하면 APPLIED로 돌아갈 수 있다.
type RefundStatus string

const (
	RefundStatusNone       RefundStatus = "NONE"
	RefundStatusApplied    RefundStatus = "APPLIED"
	RefundStatusProcessing RefundStatus = "PROCESSING"
	RefundStatusRejected   RefundStatus = "REJECTED"
	RefundStatusFailed     RefundStatus = "FAILED"
	RefundStatusSuccess    RefundStatus = "SUCCESS"
)

// CampaignStatus 크라우드펀딩 캠페인 상태
type CampaignStatus string

const (
	CampaignStatusFunding CampaignStatus = "FUNDING"
	CampaignStatusSuccess CampaignStatus = "SUCCESS"
	CampaignStatusFailed  CampaignStatus = "FAILED"
)

// ExtraKeyRefundDisagreeReason 가장 최근 환불 결정이 거절일 때만 존재하는 extra 키
const ExtraKeyRefundDisagreeReason = "refund_disagree_reason"

// TrackingInfo 배송 정보
type TrackingInfo struct {
	CarrierName string    `json:"carrierName"`
	TrackingNo  string    `json:"trackingNo"`
	ShippedAt   time.Time `json:"shippedAt"`
}

// OrderItem 주문 항목 (상품 스냅샷 참조)
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Title     string
	Price     int64
	Quantity  int
}

// Order 주문 도메인 모델 (애그리거트 루트)
type Order struct {
	ID           int64
	No           string
	UserID       int64
	Type         OrderType
	TotalAmount  int64
	PaidAt       *time.Time
	PaymentNo    string
	ShipStatus   ShipStatus
	ShipData     *TrackingInfo
	RefundStatus RefundStatus
	RefundNo     string
	Extra        map[string]string
	Items        []OrderItem
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanShip 발송 가능 여부 확인 (순수 검증, 부수효과 없음)
func (o *Order) CanShip(campaign CampaignStatus) error {
	if o.PaidAt == nil {
		return errors.New(errors.ErrCodeNotPaid, "order is not paid")
	}
	if o.ShipStatus != ShipStatusPending {
		return errors.New(errors.ErrCodeAlreadyShipped, "order is already shipped")
	}
	// 크라우드펀딩 주문은 캠페인 성공 후에만 발송 가능
	if o.Type == OrderTypeCrowdfunding && campaign != CampaignStatusSuccess {
		return errors.New(errors.ErrCodeCrowdfundingNotSuccessful, "crowdfunding campaign is not successful")
	}
	return nil
}

// Ship 발송 처리 (배송 상태 전이 + 배송 정보 저장)
func (o *Order) Ship(info TrackingInfo, now time.Time) {
	info.ShippedAt = now
	o.ShipStatus = ShipStatusDelivered
	o.ShipData = &info
	o.UpdatedAt = now
}

// ConfirmReceived 수취 확인 처리
func (o *Order) ConfirmReceived(now time.Time) error {
	if o.ShipStatus != ShipStatusDelivered {
		return errors.New(errors.ErrCodeNotDelivered, "order is not delivered yet")
	}
	o.ShipStatus = ShipStatusReceived
	o.UpdatedAt = now
	return nil
}

// CanDecideRefund 환불 결정 가능 여부 확인
func (o *Order) CanDecideRefund() error {
	if o.RefundStatus != RefundStatusApplied {
		return errors.New(errors.ErrCodeNoActiveRefundRequest, "order has no active refund request")
	}
	return nil
}

// ApproveRefund 환불 승인 준비 (이전 거절 사유 제거)
// Extra는 부분 병합 없이 항상 새 맵으로 교체한다.
func (o *Order) ApproveRefund(now time.Time) {
	if _, ok := o.Extra[ExtraKeyRefundDisagreeReason]; ok {
		extra := make(map[string]string, len(o.Extra))
		for k, v := range o.Extra {
			if k != ExtraKeyRefundDisagreeReason {
				extra[k] = v
			}
		}
		o.Extra = extra
	}
	o.UpdatedAt = now
}

// RejectRefund 환불 거절 처리 (거절 사유를 extra에 기록)
func (o *Order) RejectRefund(reason string, now time.Time) {
	extra := make(map[string]string, len(o.Extra)+1)
	for k, v := range o.Extra {
		extra[k] = v
	}
	extra[ExtraKeyRefundDisagreeReason] = reason

	o.RefundStatus = RefundStatusRejected
	o.Extra = extra
	o.UpdatedAt = now
}

// ApplyRefundResult 게이트웨이 환불 결과 반영
func (o *Order) ApplyRefundResult(status RefundStatus, refundNo string, now time.Time) {
	o.RefundStatus = status
	if refundNo != "" {
		o.RefundNo = refundNo
	}
	o.UpdatedAt = now
}

// IsRefundFinal 환불이 최종 상태에 도달했는지 확인
func (o *Order) IsRefundFinal() bool {
	return o.RefundStatus == RefundStatusSuccess || o.RefundStatus == RefundStatusFailed
}

// FirstProductID 첫 번째 주문 항목의 상품 ID (크라우드펀딩 캠페인 조회용)
func (o *Order) FirstProductID() (int64, bool) {
	if len(o.Items) == 0 {
		return 0, false
	}
	return o.Items[0].ProductID, true
}
