package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/product"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
)

// ProductService 商品服务：列表/详情/发布/编辑/删除/评价
type ProductService struct {
	products product.Repository
	users    user.Repository
}

// NewProductService 创建商品服务
func NewProductService(products product.Repository, users user.Repository) *ProductService {
	return &ProductService{products: products, users: users}
}

// GeoFilter 附近商品查询条件，Enabled=false 时走普通列表
type GeoFilter struct {
	Enabled     bool
	Longitude   float64
	Latitude    float64
	MaxDistance float64 // 米
}

// List 商品列表，支持分类/关键字/分页，带坐标时按球面距离筛选附近商品
func (s *ProductService) List(ctx context.Context, f product.ListFilter, geo GeoFilter) ([]*product.Product, int64, error) {
	if geo.Enabled {
		if geo.MaxDistance <= 0 {
			geo.MaxDistance = 1000
		}
		list, total, err := s.products.ListNearby(ctx, f, geo.Longitude, geo.Latitude, geo.MaxDistance)
		if err != nil {
			GetMonitor().RecordDBError()
			return nil, 0, err
		}
		return list, total, nil
	}
	list, total, err := s.products.List(ctx, f)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, 0, err
	}
	return list, total, nil
}

// Get 商品详情，浏览数 +1
func (s *ProductService) Get(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	if err := s.products.IncrementViews(ctx, id); err != nil {
		GetMonitor().RecordDBError()
		zap.L().Warn("increment views", zap.Int64("product_id", id), zap.Error(err))
	}
	p.Views++
	return p, nil
}

// CreateProductInput 发布商品入参
type CreateProductInput struct {
	Title           string
	Description     string
	Category        string
	Price           int64
	Stock           int64
	Images          []string
	DeliveryOptions []string
	DeliveryFee     int64
	PickupDiscount  int64
	PreOrderOnly    bool
}

func (in *CreateProductInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: missing title", ErrBadInput)
	}
	if !product.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrBadInput, in.Category)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: negative price", ErrBadInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: negative stock", ErrBadInput)
	}
	for _, opt := range in.DeliveryOptions {
		if opt != product.DeliveryPickup && opt != product.DeliveryDelivery {
			return fmt.Errorf("%w: unknown delivery option %q", ErrBadInput, opt)
		}
	}
	return nil
}

// Create 发布商品，位置与地址取卖家档案
func (s *ProductService) Create(ctx context.Context, seller *user.User, in CreateProductInput) (*product.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	stock := in.Stock
	if stock == 0 {
		stock = 1
	}
	p := &product.Product{
		SellerID:        seller.ID,
		Title:           in.Title,
		Description:     in.Description,
		Category:        in.Category,
		Price:           in.Price,
		Stock:           stock,
		IsAvailable:     true,
		Images:          in.Images,
		DeliveryOptions: in.DeliveryOptions,
		DeliveryFee:     in.DeliveryFee,
		PickupDiscount:  in.PickupDiscount,
		PreOrderOnly:    in.PreOrderOnly,
		Longitude:       seller.Longitude,
		Latitude:        seller.Latitude,
		Building:        seller.Building,
		Floor:           seller.Floor,
		ApartmentNumber: seller.ApartmentNumber,
	}
	if err := s.products.Create(ctx, p); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return p, nil
}

func (s *ProductService) getOwned(ctx context.Context, id int64, actor *user.User) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	if p.SellerID != actor.ID && actor.Role != user.RoleAdmin {
		return nil, ErrForbidden
	}
	return p, nil
}

// UpdateProductInput 编辑商品入参，nil 字段表示不改
type UpdateProductInput struct {
	Title           *string
	Description     *string
	Category        *string
	Price           *int64
	Stock           *int64
	Images          []string
	DeliveryOptions []string
	DeliveryFee     *int64
	PickupDiscount  *int64
	IsAvailable     *bool
}

// Update 编辑商品，仅卖家本人或管理员
func (s *ProductService) Update(ctx context.Context, id int64, actor *user.User, in UpdateProductInput) (*product.Product, error) {
	p, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		if !product.ValidCategory(*in.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrBadInput, *in.Category)
		}
		p.Category = *in.Category
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: negative price", ErrBadInput)
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: negative stock", ErrBadInput)
		}
		p.Stock = *in.Stock
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.DeliveryOptions != nil {
		p.DeliveryOptions = in.DeliveryOptions
	}
	if in.DeliveryFee != nil {
		p.DeliveryFee = *in.DeliveryFee
	}
	if in.PickupDiscount != nil {
		p.PickupDiscount = *in.PickupDiscount
	}
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}

	if err := s.products.Update(ctx, p); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return p, nil
}

// Delete 下架删除（硬删除），仅卖家本人或管理员
func (s *ProductService) Delete(ctx context.Context, id int64, actor *user.User) error {
	if _, err := s.getOwned(ctx, id, actor); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		GetMonitor().RecordDBError()
		return err
	}
	return nil
}

// ListBySeller 卖家主页的在售商品
func (s *ProductService) ListBySeller(ctx context.Context, sellerID int64) ([]*product.Product, error) {
	list, err := s.products.ListBySeller(ctx, sellerID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return list, nil
}

// ListReviews 商品的全部评价
func (s *ProductService) ListReviews(ctx context.Context, productID int64) ([]*product.Review, error) {
	list, err := s.products.ListReviews(ctx, productID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return list, nil
}

// AddReview 评价商品，1-5 分，每人一条，完成后重算均分
func (s *ProductService) AddReview(ctx context.Context, productID, userID int64, rating int, comment string) (*product.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1-5", ErrBadInput)
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}

	existing, err := s.products.ListReviews(ctx, productID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	for _, r := range existing {
		if r.UserID == userID {
			return nil, ErrAlreadyReviewed
		}
	}

	if err := s.products.AddReview(ctx, &product.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	if err := s.products.UpdateRating(ctx, productID); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return s.products.GetByID(ctx, p.ID)
}
