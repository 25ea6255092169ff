package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/services/admin/internal/domain"
)

// OrderRepository 주문 레포지토리 인터페이스
//
// UpdateShipment / UpdateRefund는 상태 변경과 outbox 이벤트 삽입을 하나의
// 트랜잭션으로 묶고, 낙관적 잠금으로 버전 충돌을 감지한다.
// 버전이 맞지 않으면 (false, nil)을 반환한다.
type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByNo(ctx context.Context, no string) (*domain.Order, error)
	ListPaid(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	FindStuckRefunds(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.Order, error)
	UpdateShipment(ctx context.Context, order *domain.Order, event *OutboxEvent) (bool, error)
	UpdateRefund(ctx context.Context, order *domain.Order, event *OutboxEvent) (bool, error)
}

type orderRepository struct {
	db     *sql.DB
	outbox OutboxRepository
}

// NewOrderRepository 주문 레포지토리 생성
func NewOrderRepository(db *sql.DB, outbox OutboxRepository) OrderRepository {
	return &orderRepository{db: db, outbox: outbox}
}

const orderColumns = `
	id, no, user_id, type, total_amount, paid_at, payment_no,
	ship_status, ship_data, refund_status, refund_no, extra, version,
	created_at, updated_at
`

// FindByID ID로 주문 조회 (주문 항목 포함)
func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// FindByNo 주문번호로 주문 조회 (주문 항목 포함)
func (r *orderRepository) FindByNo(ctx context.Context, no string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE no = $1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, no))
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// ListPaid 결제 완료 주문 목록 조회 (결제 시각 내림차순, 관리자 그리드용)
func (r *orderRepository) ListPaid(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE paid_at IS NOT NULL
		ORDER BY paid_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseError, "failed to list paid orders", err)
	}
	defer rows.Close()

	return r.collectOrders(rows)
}

// FindStuckRefunds 환불 결과가 확정되지 않은 채 오래 머문 주문 조회 (대사 워커용)
func (r *orderRepository) FindStuckRefunds(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE refund_status IN ($1, $2)
		AND updated_at < $3
		ORDER BY updated_at ASC
		LIMIT $4
	`

	rows, err := r.db.QueryContext(ctx, query,
		domain.RefundStatusApplied,
		domain.RefundStatusProcessing,
		time.Now().Add(-olderThan),
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseError, "failed to find stuck refunds", err)
	}
	defer rows.Close()

	return r.collectOrders(rows)
}

// UpdateShipment 발송 상태와 배송 정보를 outbox 이벤트와 함께 원자적으로 갱신
func (r *orderRepository) UpdateShipment(ctx context.Context, order *domain.Order, event *OutboxEvent) (bool, error) {
	shipData, err := json.Marshal(order.ShipData)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeSerializationError, "failed to marshal ship data", err)
	}

	query := `
		UPDATE orders
		SET ship_status = $1, ship_data = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5
	`

	return r.updateTx(ctx, order, event, query,
		order.ShipStatus, shipData, order.UpdatedAt, order.ID, order.Version)
}

// UpdateRefund 환불 상태/extra를 outbox 이벤트와 함께 원자적으로 갱신
func (r *orderRepository) UpdateRefund(ctx context.Context, order *domain.Order, event *OutboxEvent) (bool, error) {
	extra, err := json.Marshal(order.Extra)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeSerializationError, "failed to marshal extra", err)
	}

	query := `
		UPDATE orders
		SET refund_status = $1, refund_no = $2, extra = $3, version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6
	`

	return r.updateTx(ctx, order, event, query,
		order.RefundStatus, order.RefundNo, extra, order.UpdatedAt, order.ID, order.Version)
}

// updateTx 낙관적 잠금 갱신과 outbox 삽입을 하나의 트랜잭션으로 실행
func (r *orderRepository) updateTx(ctx context.Context, order *domain.Order, event *OutboxEvent, query string, args ...interface{}) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeDatabaseError, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeDatabaseError, "failed to update order", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeDatabaseError, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		// 버전 불일치: 커밋하지 않고 종료
		return false, nil
	}

	if event != nil {
		if err := r.outbox.InsertTx(ctx, tx, event); err != nil {
			return false, errors.Wrap(errors.ErrCodeDatabaseError, "failed to insert outbox event", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(errors.ErrCodeDatabaseError, "failed to commit transaction", err)
	}

	order.Version++
	return true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var paidAt sql.NullTime
	var paymentNo, refundNo sql.NullString
	var shipData, extra []byte

	err := row.Scan(
		&order.ID,
		&order.No,
		&order.UserID,
		&order.Type,
		&order.TotalAmount,
		&paidAt,
		&paymentNo,
		&order.ShipStatus,
		&shipData,
		&order.RefundStatus,
		&refundNo,
		&extra,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeOrderNotFound, "order not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseError, "failed to scan order", err)
	}

	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}
	if paymentNo.Valid {
		order.PaymentNo = paymentNo.String
	}
	if refundNo.Valid {
		order.RefundNo = refundNo.String
	}
	if len(shipData) > 0 {
		if err := json.Unmarshal(shipData, &order.ShipData); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSerializationError, "failed to unmarshal ship data", err)
		}
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &order.Extra); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSerializationError, "failed to unmarshal extra", err)
		}
	}

	return order, nil
}

func (r *orderRepository) collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseError, "failed to iterate orders", err)
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, product_id, title, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDatabaseError, "failed to load order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Title, &item.Price, &item.Quantity); err != nil {
			return errors.Wrap(errors.ErrCodeDatabaseError, "failed to scan order item", err)
		}
		order.Items = append(order.Items, item)
	}

	return rows.Err()
}
