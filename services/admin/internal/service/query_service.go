package service

import (
	"context"

	"github.com/mallkit/order-admin/services/admin/internal/domain"
	"github.com/mallkit/order-admin/services/admin/internal/repository"
)

// OrderQueryService 관리자 그리드용 주문 조회 서비스
type OrderQueryService interface {
	// ListPaid 결제 완료 주문만, 결제 시각 내림차순으로 반환
	ListPaid(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	Get(ctx context.Context, orderID int64) (*domain.Order, error)
}

type orderQueryService struct {
	orderRepo repository.OrderRepository
}

// NewOrderQueryService 주문 조회 서비스 생성
func NewOrderQueryService(orderRepo repository.OrderRepository) OrderQueryService {
	return &orderQueryService{orderRepo: orderRepo}
}

func (s *orderQueryService) ListPaid(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.orderRepo.ListPaid(ctx, limit, offset)
}

func (s *orderQueryService) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}
