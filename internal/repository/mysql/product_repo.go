package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).Preload("Reviews").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) listQuery(ctx context.Context, f product.ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&product.Product{}).Where("is_available = ?", true)
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		kw := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", kw, kw)
	}
	return q
}

func (r *productRepo) List(ctx context.Context, f product.ListFilter) ([]*product.Product, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	var total int64
	if err := r.listQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []*product.Product
	err := r.listQuery(ctx, f).
		Order("created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) ListNearby(ctx context.Context, f product.ListFilter, lng, lat, maxDistance float64) ([]*product.Product, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	var total int64
	countQ := r.listQuery(ctx, f).
		Where("ST_Distance_Sphere(POINT(longitude, latitude), POINT(?, ?)) <= ?", lng, lat, maxDistance)
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []*product.Product
	err := r.listQuery(ctx, f).
		Where("ST_Distance_Sphere(POINT(longitude, latitude), POINT(?, ?)) <= ?", lng, lat, maxDistance).
		Order("created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*product.Product, error) {
	var list []*product.Product
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND is_available = ?", sellerID, true).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	// 硬删除，评价一并清理
	if err := r.db.WithContext(ctx).Where("product_id = ?", id).Delete(&product.Review{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&product.Product{}, id).Error
}

// DecrementStock 单条条件更新完成扣减 + 售罄下架，避免读-改-写竞态超卖
func (r *productRepo) DecrementStock(ctx context.Context, id, qty int64) error {
	res := r.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock":        gorm.Expr("stock - ?", qty),
			"is_available": gorm.Expr("stock - ? > 0", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return product.ErrInsufficientStock
	}
	return nil
}

// RestoreStock 回补库存并无条件恢复在售状态（取消路径语义如此）
func (r *productRepo) RestoreStock(ctx context.Context, id, qty int64) error {
	return r.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":        gorm.Expr("stock + ?", qty),
			"is_available": true,
		}).Error
}

func (r *productRepo) IncrementSold(ctx context.Context, id, qty int64) error {
	return r.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ?", id).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", qty)).Error
}

func (r *productRepo) IncrementViews(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *productRepo) AddReview(ctx context.Context, rv *product.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *productRepo) ListReviews(ctx context.Context, productID int64) ([]*product.Review, error) {
	var list []*product.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) UpdateRating(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE products SET
			rating_count = (SELECT COUNT(*) FROM reviews WHERE product_id = ?),
			rating_average = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = ?)
		WHERE id = ?`, productID, productID, productID).Error
}
