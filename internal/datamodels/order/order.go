package order

import (
	"context"
	"time"
)

// 订单状态机：pending → confirmed → preparing → ready → delivered → completed，
// cancelled 仅能从 pending/confirmed 进入。
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusDelivered = "delivered"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// 支付方式 / 支付状态
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// ValidStatus 校验状态取值
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod 校验支付方式
func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentTransfer
}

// Cancellable 只有待确认/已确认的订单可以被买家取消
func Cancellable(s string) bool {
	return s == StatusPending || s == StatusConfirmed
}

// Order 订单模型。Snapshot* 为下单时的商品快照，商品后续编辑不影响已有订单。
// 不变式：FinalPrice = Quantity*SnapshotPrice + DeliveryFee - Discount。
type Order struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;size:32;not null" json:"orderNumber"`

	BuyerID   int64 `gorm:"index;not null" json:"buyerId"`
	SellerID  int64 `gorm:"index;not null" json:"sellerId"`
	ProductID int64 `gorm:"index;not null" json:"productId"`

	SnapshotTitle string `gorm:"size:128" json:"snapshotTitle"`
	SnapshotPrice int64  `json:"snapshotPrice"`
	SnapshotImage string `gorm:"size:255" json:"snapshotImage"`

	Quantity   int64 `gorm:"not null" json:"quantity"`
	TotalPrice int64 `gorm:"not null" json:"totalPrice"`

	DeliveryMethod string `gorm:"size:16;not null" json:"deliveryMethod"`
	DeliveryFee    int64  `gorm:"not null;default:0" json:"deliveryFee"`
	Discount       int64  `gorm:"not null;default:0" json:"discount"`
	FinalPrice     int64  `gorm:"not null" json:"finalPrice"`

	PaymentMethod string `gorm:"size:16;not null" json:"paymentMethod"`
	PaymentStatus string `gorm:"size:16;not null;default:unpaid" json:"paymentStatus"`

	Status string `gorm:"size:16;index;not null;default:pending" json:"status"`
	Notes  string `gorm:"size:512" json:"notes"`

	Building        string `gorm:"size:32" json:"building"`
	Floor           string `gorm:"size:16" json:"floor"`
	ApartmentNumber string `gorm:"size:16" json:"apartmentNumber"`

	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
	CancelReason  string     `gorm:"size:255" json:"cancelReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository 订单仓储接口。订单只增改不删。
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	// ListByBuyer / ListBySeller 按创建时间倒序，status 为空表示不过滤
	ListByBuyer(ctx context.Context, buyerID int64, status string) ([]*Order, error)
	ListBySeller(ctx context.Context, sellerID int64, status string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
}
