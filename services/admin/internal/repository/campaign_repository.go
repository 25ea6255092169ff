package repository

import (
	"context"
	"database/sql"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
)

// CampaignStatusLookup 크라우드펀딩 캠페인 상태 조회 인터페이스
type CampaignStatusLookup interface {
	StatusOf(ctx context.Context, productID int64) (domain.CampaignStatus, error)
}

type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository 캠페인 레포지토리 생성
func NewCampaignRepository(db *sql.DB) CampaignStatusLookup {
	return &campaignRepository{db: db}
}

// StatusOf 상품 ID로 캠페인 상태 조회
// 캠페인 성공 여부 계산은 외부 서비스 소관이며 여기서는 저장된 상태만 읽는다.
func (r *campaignRepository) StatusOf(ctx context.Context, productID int64) (domain.CampaignStatus, error) {
	query := `SELECT status FROM crowdfunding_products WHERE product_id = $1`

	var status domain.CampaignStatus
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&status)

	if err == sql.ErrNoRows {
		return "", errors.Newf(errors.ErrCodeCrowdfundingNotSuccessful, "no crowdfunding campaign for product %d", productID)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDatabaseError, "failed to query campaign status", err)
	}

	return status, nil
}
