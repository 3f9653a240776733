package product

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// 商品分类（封闭枚举，对应社区集市的九个频道）
const (
	CategoryBreakfast  = "breakfast"  // 早餐
	CategoryLunchbox   = "lunchbox"   // 工作餐
	CategorySnacks     = "snacks"     // 零食小吃
	CategoryDessert    = "dessert"    // 甜品饮品
	CategoryFresh      = "fresh"      // 生鲜食材
	CategoryHandmade   = "handmade"   // 手作
	CategorySecondhand = "secondhand" // 二手闲置
	CategoryGrocery    = "grocery"    // 日用百货
	CategoryOther      = "other"      // 其它
)

// 配送方式
const (
	DeliveryPickup   = "pickup"   // 自取
	DeliveryDelivery = "delivery" // 送货上门
)

// ValidCategory 校验分类取值
func ValidCategory(c string) bool {
	switch c {
	case CategoryBreakfast, CategoryLunchbox, CategorySnacks, CategoryDessert,
		CategoryFresh, CategoryHandmade, CategorySecondhand, CategoryGrocery, CategoryOther:
		return true
	}
	return false
}

// StringList 以 JSON 存储的字符串数组列（图片、配送方式）
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("StringList: unsupported column type")
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Product 商品模型
// 不变式：Stock == 0 时 IsAvailable 必须为 false（下单路径负责维护，取消路径无条件恢复）
type Product struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	SellerID    int64      `gorm:"index;not null" json:"sellerId"`
	Title       string     `gorm:"size:128;not null" json:"title"`
	Description string     `gorm:"size:2048" json:"description"`
	Category    string     `gorm:"size:32;index;not null" json:"category"`
	Price       int64      `gorm:"not null" json:"price"` // 按最小货币单位存储
	Images      StringList `gorm:"type:text" json:"images"`
	Stock       int64      `gorm:"not null;default:1" json:"stock"`
	IsAvailable bool       `gorm:"index;not null;default:true" json:"isAvailable"`

	Longitude       float64 `json:"longitude"`
	Latitude        float64 `json:"latitude"`
	Building        string  `gorm:"size:32" json:"building"`
	Floor           string  `gorm:"size:16" json:"floor"`
	ApartmentNumber string  `gorm:"size:16" json:"apartmentNumber"`

	DeliveryOptions StringList `gorm:"type:text" json:"deliveryOptions"`
	DeliveryFee     int64      `gorm:"not null;default:0" json:"deliveryFee"`
	PickupDiscount  int64      `gorm:"not null;default:0" json:"pickupDiscount"`
	PreOrderOnly    bool       `gorm:"not null;default:false" json:"preOrderOnly"`

	RatingAverage float64 `gorm:"not null;default:0" json:"ratingAverage"`
	RatingCount   int64   `gorm:"not null;default:0" json:"ratingCount"`
	Views         int64   `gorm:"not null;default:0" json:"views"`
	SoldCount     int64   `gorm:"not null;default:0" json:"soldCount"`

	Reviews []Review `gorm:"foreignKey:ProductID" json:"reviews,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Review 商品评价，每个用户对同一商品只能评价一次
type Review struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ProductID int64     `gorm:"index:idx_review_product_user,unique;not null" json:"productId"`
	UserID    int64     `gorm:"index:idx_review_product_user,unique;not null" json:"userId"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	Comment   string    `gorm:"size:1024" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListFilter 商品列表查询条件
type ListFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, f ListFilter) ([]*Product, int64, error)
	// ListNearby 按球面距离返回附近在售商品，近的在前
	ListNearby(ctx context.Context, f ListFilter, lng, lat, maxDistance float64) ([]*Product, int64, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error

	// DecrementStock 条件原子扣减：仅当 stock >= qty 时生效，扣到 0 同时下架。
	// 库存不足（或并发下被抢光）返回 ErrInsufficientStock。
	DecrementStock(ctx context.Context, id, qty int64) error
	// RestoreStock 取消订单回补库存并无条件恢复在售状态
	RestoreStock(ctx context.Context, id, qty int64) error
	IncrementSold(ctx context.Context, id, qty int64) error
	IncrementViews(ctx context.Context, id int64) error

	AddReview(ctx context.Context, r *Review) error
	ListReviews(ctx context.Context, productID int64) ([]*Review, error)
	// UpdateRating 按评价表重算均分与计数
	UpdateRating(ctx context.Context, productID int64) error
}

// ErrInsufficientStock 条件扣减未命中任何行
var ErrInsufficientStock = errors.New("insufficient stock")
