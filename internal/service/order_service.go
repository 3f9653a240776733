package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/order"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/product"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
)

// orderSeqKey 订单号序列的 Redis 计数器。
// 原始实现用「当前订单总数 + 1」拼单号，并发下会撞号，这里换成原子 INCR。
const orderSeqKey = "order:seq"

// orderNumberPrefix 单号前缀，后接毫秒时间戳末 8 位 + 4 位序列
const orderNumberPrefix = "CHO"

// OrderService 订单引擎：校验库存、计价、出单号、状态流转、库存回补
type OrderService struct {
	orders   order.Repository
	products product.Repository
	users    user.Repository
	redis    radix.Client

	// Redis 不可用时的进程内兜底序列（测试环境也走这里）
	localSeq int64
}

// NewOrderService 创建订单服务，redis 可为 nil
func NewOrderService(orders order.Repository, products product.Repository, users user.Repository, redis radix.Client) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		redis:    redis,
	}
}

// CreateOrderInput 下单入参
type CreateOrderInput struct {
	BuyerID        int64
	ProductID      int64
	Quantity       int64
	DeliveryMethod string
	PaymentMethod  string
	Notes          string
	ScheduledTime  *time.Time
}

func (s *OrderService) nextOrderNumber(ctx context.Context) string {
	var seq int64
	if s.redis != nil {
		if err := s.redis.Do(radix.Cmd(&seq, "INCR", orderSeqKey)); err != nil {
			GetMonitor().RecordRedisError()
			zap.L().Warn("order seq from redis failed, falling back to local", zap.Error(err))
			seq = atomic.AddInt64(&s.localSeq, 1)
		}
	} else {
		seq = atomic.AddInt64(&s.localSeq, 1)
	}
	ms := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return fmt.Sprintf("%s%s%04d", orderNumberPrefix, ms[len(ms)-8:], seq%10000)
}

// Create 下单。库存扣减是一条条件原子更新，先扣减成功再写订单，
// 两次写之间崩溃最多丢一笔订单，不会超卖。
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*order.Order, error) {
	GetMonitor().RecordOrderRequest()

	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrBadInput)
	}
	if in.DeliveryMethod != product.DeliveryPickup && in.DeliveryMethod != product.DeliveryDelivery {
		return nil, fmt.Errorf("%w: unknown delivery method %q", ErrBadInput, in.DeliveryMethod)
	}
	if !order.ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrBadInput, in.PaymentMethod)
	}

	p, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			GetMonitor().RecordOrderFailure()
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	if !p.IsAvailable {
		GetMonitor().RecordOrderFailure()
		return nil, ErrUnavailable
	}
	if in.Quantity > p.Stock {
		GetMonitor().RecordOrderFailure()
		return nil, ErrInsufficientStock
	}

	buyer, err := s.users.GetByID(ctx, in.BuyerID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}

	// 计价：送货加配送费，自取减自取优惠
	totalPrice := p.Price * in.Quantity
	var deliveryFee, discount int64
	switch in.DeliveryMethod {
	case product.DeliveryDelivery:
		deliveryFee = p.DeliveryFee
	case product.DeliveryPickup:
		discount = p.PickupDiscount
	}
	finalPrice := totalPrice + deliveryFee - discount

	// 先条件扣减库存，并发下被抢光直接报库存不足
	if err := s.products.DecrementStock(ctx, p.ID, in.Quantity); err != nil {
		if errors.Is(err, product.ErrInsufficientStock) {
			GetMonitor().RecordOrderFailure()
			return nil, ErrInsufficientStock
		}
		GetMonitor().RecordDBError()
		return nil, err
	}

	var snapshotImage string
	if len(p.Images) > 0 {
		snapshotImage = p.Images[0]
	}

	o := &order.Order{
		OrderNumber:     s.nextOrderNumber(ctx),
		BuyerID:         in.BuyerID,
		SellerID:        p.SellerID,
		ProductID:       p.ID,
		SnapshotTitle:   p.Title,
		SnapshotPrice:   p.Price,
		SnapshotImage:   snapshotImage,
		Quantity:        in.Quantity,
		TotalPrice:      totalPrice,
		DeliveryMethod:  in.DeliveryMethod,
		DeliveryFee:     deliveryFee,
		Discount:        discount,
		FinalPrice:      finalPrice,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   order.PaymentStatusUnpaid,
		Status:          order.StatusPending,
		Notes:           in.Notes,
		Building:        buyer.Building,
		Floor:           buyer.Floor,
		ApartmentNumber: buyer.ApartmentNumber,
		ScheduledTime:   in.ScheduledTime,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		GetMonitor().RecordDBError()
		// 写单失败回补已扣库存，失败只能留给日志
		if rbErr := s.products.RestoreStock(ctx, p.ID, in.Quantity); rbErr != nil {
			zap.L().Error("restore stock after failed order create",
				zap.Int64("product_id", p.ID), zap.Error(rbErr))
		}
		return nil, err
	}

	GetMonitor().RecordOrderCreated()
	zap.L().Info("order created",
		zap.String("order_number", o.OrderNumber),
		zap.Int64("buyer_id", o.BuyerID),
		zap.Int64("product_id", o.ProductID),
		zap.Int64("quantity", o.Quantity))
	return o, nil
}

// List 查自己的订单，role 取 buyer/seller，status 为空表示全部
func (s *OrderService) List(ctx context.Context, userID int64, role, status string) ([]*order.Order, error) {
	if role == "seller" {
		return s.orders.ListBySeller(ctx, userID, status)
	}
	return s.orders.ListByBuyer(ctx, userID, status)
}

// ListAll 后台查询全部订单
func (s *OrderService) ListAll(ctx context.Context) ([]*order.Order, error) {
	return s.orders.ListAll(ctx)
}

// OrderDetail 单个订单视图，买卖双方身份展开后返回
type OrderDetail struct {
	*order.Order
	Buyer  user.Public `json:"buyer"`
	Seller user.Public `json:"seller"`
}

// Get 查单个订单，只有买家/卖家/管理员可见
func (s *OrderService) Get(ctx context.Context, orderID int64, actor *user.User) (*OrderDetail, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	if actor.ID != o.BuyerID && actor.ID != o.SellerID && actor.Role != user.RoleAdmin {
		return nil, ErrForbidden
	}

	detail := &OrderDetail{Order: o}
	if buyer, err := s.users.GetByID(ctx, o.BuyerID); err == nil {
		detail.Buyer = buyer.PublicView()
	}
	if seller, err := s.users.GetByID(ctx, o.SellerID); err == nil {
		detail.Seller = seller.PublicView()
	}
	return detail, nil
}

// UpdateStatus 卖家更新订单状态。除取值合法性外不限制流转来源，
// 完成单额外记完成时间并累加商品销量。
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, actorID int64, status string) (*order.Order, error) {
	if !order.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadInput, status)
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	if o.SellerID != actorID {
		return nil, ErrForbidden
	}

	o.Status = status
	if status == order.StatusCompleted {
		now := time.Now()
		o.CompletedAt = &now
		if err := s.products.IncrementSold(ctx, o.ProductID, o.Quantity); err != nil {
			GetMonitor().RecordDBError()
			zap.L().Error("increment sold count", zap.Int64("product_id", o.ProductID), zap.Error(err))
		}
	}
	if err := s.orders.Update(ctx, o); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return o, nil
}

// Cancel 买家取消订单，仅 pending/confirmed 可取消；
// 回补库存并无条件恢复商品在售状态。
func (s *OrderService) Cancel(ctx context.Context, orderID, actorID int64, reason string) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	if o.BuyerID != actorID {
		return nil, ErrForbidden
	}
	if !order.Cancellable(o.Status) {
		return nil, ErrInvalidState
	}

	now := time.Now()
	o.Status = order.StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	if err := s.orders.Update(ctx, o); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	if err := s.products.RestoreStock(ctx, o.ProductID, o.Quantity); err != nil {
		GetMonitor().RecordDBError()
		zap.L().Error("restore stock on cancel", zap.Int64("product_id", o.ProductID), zap.Error(err))
	}

	GetMonitor().RecordOrderCancelled()
	zap.L().Info("order cancelled",
		zap.String("order_number", o.OrderNumber),
		zap.String("reason", reason))
	return o, nil
}
