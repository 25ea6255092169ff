package presentation

import "github.com/mallkit/order-admin/services/admin/internal/domain"

// 관리자 화면용 상태 라벨. 상태 코드는 저장/전송에, 라벨은 표시에만 쓴다.

var shipStatusLabels = map[domain.ShipStatus]string{
	domain.ShipStatusPending:   "배송 대기",
	domain.ShipStatusDelivered: "발송 완료",
	domain.ShipStatusReceived:  "수취 확인",
}

var refundStatusLabels = map[domain.RefundStatus]string{
	domain.RefundStatusNone:       "환불 없음",
	domain.RefundStatusApplied:    "환불 신청됨",
	domain.RefundStatusProcessing: "환불 처리 중",
	domain.RefundStatusRejected:   "환불 거절됨",
	domain.RefundStatusFailed:     "환불 실패",
	domain.RefundStatusSuccess:    "환불 완료",
}

var orderTypeLabels = map[domain.OrderType]string{
	domain.OrderTypeNormal:       "일반 주문",
	domain.OrderTypeCrowdfunding: "크라우드펀딩 주문",
	domain.OrderTypeSeckill:      "타임세일 주문",
}

// ShipStatusLabel 배송 상태 라벨 (미지정 상태는 코드 그대로)
func ShipStatusLabel(status domain.ShipStatus) string {
	if label, ok := shipStatusLabels[status]; ok {
		return label
	}
	return string(status)
}

// RefundStatusLabel 환불 상태 라벨
func RefundStatusLabel(status domain.RefundStatus) string {
	if label, ok := refundStatusLabels[status]; ok {
		return label
	}
	return string(status)
}

// OrderTypeLabel 주문 유형 라벨
func OrderTypeLabel(orderType domain.OrderType) string {
	if label, ok := orderTypeLabels[orderType]; ok {
		return label
	}
	return string(orderType)
}
