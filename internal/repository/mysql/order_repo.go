package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) listByColumn(ctx context.Context, col string, id int64, status string) ([]*order.Order, error) {
	var list []*order.Order
	q := r.db.WithContext(ctx).Where(col+" = ?", id)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListByBuyer(ctx context.Context, buyerID int64, status string) ([]*order.Order, error) {
	return r.listByColumn(ctx, "buyer_id", buyerID, status)
}

func (r *orderRepo) ListBySeller(ctx context.Context, sellerID int64, status string) ([]*order.Order, error) {
	return r.listByColumn(ctx, "seller_id", sellerID, status)
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) Update(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}
