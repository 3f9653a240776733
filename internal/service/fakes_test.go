package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/chat"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/order"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/product"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/relay"
)

// ---------- 用户仓储 ----------

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*user.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeUserRepo) ListNearby(_ context.Context, _, _, _ float64, excludeID int64, limit int) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*user.User, 0)
	for _, u := range r.users {
		if u.ID == excludeID {
			continue
		}
		cp := *u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id int64, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) SetVerified(_ context.Context, id int64, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsVerified = verified
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// ---------- 商品仓储 ----------

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*product.Product
	reviews  []*product.Review
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*product.Product)}
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) List(_ context.Context, f product.ListFilter) ([]*product.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*product.Product, 0)
	for _, p := range r.products {
		if !p.IsAvailable {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(p.Title, f.Search) {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, int64(len(list)), nil
}

func (r *fakeProductRepo) ListNearby(ctx context.Context, f product.ListFilter, _, _, _ float64) ([]*product.Product, int64, error) {
	return r.List(ctx, f)
}

func (r *fakeProductRepo) ListBySeller(_ context.Context, sellerID int64) ([]*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*product.Product, 0)
	for _, p := range r.products {
		if p.SellerID == sellerID {
			cp := *p
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return product.ErrInsufficientStock
	}
	p.Stock -= qty
	p.IsAvailable = p.Stock > 0
	return nil
}

func (r *fakeProductRepo) RestoreStock(_ context.Context, id, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += qty
	p.IsAvailable = true
	return nil
}

func (r *fakeProductRepo) IncrementSold(_ context.Context, id, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.SoldCount += qty
	return nil
}

func (r *fakeProductRepo) IncrementViews(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Views++
	return nil
}

func (r *fakeProductRepo) AddReview(_ context.Context, rv *product.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv.ID = int64(len(r.reviews) + 1)
	r.reviews = append(r.reviews, rv)
	return nil
}

func (r *fakeProductRepo) ListReviews(_ context.Context, productID int64) ([]*product.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*product.Review, 0)
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			list = append(list, rv)
		}
	}
	return list, nil
}

func (r *fakeProductRepo) UpdateRating(_ context.Context, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	var sum, count int64
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			sum += int64(rv.Rating)
			count++
		}
	}
	p.RatingCount = count
	if count > 0 {
		p.RatingAverage = float64(sum) / float64(count)
	} else {
		p.RatingAverage = 0
	}
	return nil
}

// ---------- 订单仓储 ----------

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*order.Order

	failCreate bool // 模拟写单失败，验证库存回补
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*order.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return gorm.ErrInvalidTransaction
	}
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) listBy(match func(*order.Order) bool, status string) []*order.Order {
	list := make([]*order.Order, 0)
	for _, o := range r.orders {
		if !match(o) {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		cp := *o
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (r *fakeOrderRepo) ListByBuyer(_ context.Context, buyerID int64, status string) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listBy(func(o *order.Order) bool { return o.BuyerID == buyerID }, status), nil
}

func (r *fakeOrderRepo) ListBySeller(_ context.Context, sellerID int64, status string) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listBy(func(o *order.Order) bool { return o.SellerID == sellerID }, status), nil
}

func (r *fakeOrderRepo) ListAll(_ context.Context) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listBy(func(*order.Order) bool { return true }, ""), nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

// ---------- 消息仓储 ----------

type fakeChatRepo struct {
	mu       sync.Mutex
	nextID   int64
	messages []*chat.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{}
}

func (r *fakeChatRepo) Create(_ context.Context, m *chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id int64) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChatRepo) ListByRoom(_ context.Context, roomID string) ([]*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*chat.Message, 0)
	for _, m := range r.messages {
		if m.RoomID == roomID && !m.IsDeleted {
			cp := *m
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *fakeChatRepo) ListByUser(_ context.Context, userID int64) ([]*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*chat.Message, 0)
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			cp := *m
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *fakeChatRepo) MarkDeleted(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			m.IsDeleted = true
			m.DeletedAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeChatRepo) MarkRead(_ context.Context, roomID string, receiverID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.RoomID == roomID && m.ReceiverID == receiverID {
			m.IsRead = true
		}
	}
	return nil
}

func (r *fakeChatRepo) CountUnread(_ context.Context, roomID string, receiverID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.RoomID == roomID && m.ReceiverID == receiverID && !m.IsRead && !m.IsDeleted {
			n++
		}
	}
	return n, nil
}

// ---------- 事件发布 ----------

type fakePublisher struct {
	mu     sync.Mutex
	events []relay.Event
}

func (p *fakePublisher) Publish(_ context.Context, evt relay.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) Events() []relay.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]relay.Event(nil), p.events...)
}
