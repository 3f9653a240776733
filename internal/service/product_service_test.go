package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/product"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
)

func newProductFixture(t *testing.T) (*ProductService, *fakeProductRepo, *user.User) {
	t.Helper()
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	seller := &user.User{
		Name: "Chị Hoa", Email: "hoa@example.com", Role: user.RoleSeller,
		Building: "A1", Floor: "3", ApartmentNumber: "302",
		Longitude: 106.7, Latitude: 10.8,
	}
	require.NoError(t, users.Create(context.Background(), seller))
	return NewProductService(products, users), products, seller
}

func TestCreateProduct(t *testing.T) {
	svc, _, seller := newProductFixture(t)

	p, err := svc.Create(context.Background(), seller, CreateProductInput{
		Title:           "Xôi gà",
		Category:        product.CategoryBreakfast,
		Price:           25000,
		Stock:           5,
		DeliveryOptions: []string{product.DeliveryPickup},
	})
	require.NoError(t, err)
	assert.True(t, p.IsAvailable)
	assert.Equal(t, int64(5), p.Stock)

	// 位置与地址取卖家档案
	assert.Equal(t, seller.ID, p.SellerID)
	assert.Equal(t, "A1", p.Building)
	assert.Equal(t, 106.7, p.Longitude)
}

func TestCreateProductDefaultStock(t *testing.T) {
	svc, _, seller := newProductFixture(t)

	p, err := svc.Create(context.Background(), seller, CreateProductInput{
		Title:    "Tủ sách cũ",
		Category: product.CategorySecondhand,
		Price:    150000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Stock)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, seller := newProductFixture(t)
	ctx := context.Background()

	cases := []CreateProductInput{
		{Category: product.CategoryOther, Price: 1},                                                    // thiếu title
		{Title: "x", Category: "spaceship", Price: 1},                                                  // category lạ
		{Title: "x", Category: product.CategoryOther, Price: -1},                                       // giá âm
		{Title: "x", Category: product.CategoryOther, Price: 1, Stock: -2},                             // kho âm
		{Title: "x", Category: product.CategoryOther, Price: 1, DeliveryOptions: []string{"teleport"}}, // giao hàng lạ
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, seller, in)
		assert.ErrorIs(t, err, ErrBadInput)
	}
}

func TestUpdateProductOwnership(t *testing.T) {
	svc, _, seller := newProductFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, seller, CreateProductInput{
		Title: "Xôi gà", Category: product.CategoryBreakfast, Price: 25000, Stock: 5,
	})
	require.NoError(t, err)

	other := &user.User{ID: 999, Role: user.RoleSeller}
	_, err = svc.Update(ctx, p.ID, other, UpdateProductInput{})
	assert.ErrorIs(t, err, ErrForbidden)

	// 管理员可以越过所有权
	admin := &user.User{ID: 1000, Role: user.RoleAdmin}
	newPrice := int64(30000)
	updated, err := svc.Update(ctx, p.ID, admin, UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), updated.Price)

	// nil 字段不改
	assert.Equal(t, "Xôi gà", updated.Title)

	err = svc.Delete(ctx, p.ID, other)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, svc.Delete(ctx, p.ID, seller))

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetProductCountsView(t *testing.T) {
	svc, repo, seller := newProductFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, seller, CreateProductInput{
		Title: "Chè bưởi", Category: product.CategoryDessert, Price: 15000, Stock: 3,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)
}

func TestAddReview(t *testing.T) {
	svc, _, seller := newProductFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, seller, CreateProductInput{
		Title: "Chè bưởi", Category: product.CategoryDessert, Price: 15000, Stock: 3,
	})
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, p.ID, 7, 0, "")
	assert.ErrorIs(t, err, ErrBadInput)
	_, err = svc.AddReview(ctx, p.ID, 7, 6, "")
	assert.ErrorIs(t, err, ErrBadInput)

	got, err := svc.AddReview(ctx, p.ID, 7, 5, "ngon lắm")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RatingCount)
	assert.Equal(t, 5.0, got.RatingAverage)

	// 同一人只能评一次
	_, err = svc.AddReview(ctx, p.ID, 7, 3, "chấm lại")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	// 第二个人评分后重算均分
	got, err = svc.AddReview(ctx, p.ID, 8, 2, "hơi ngọt")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.RatingCount)
	assert.Equal(t, 3.5, got.RatingAverage)

	reviews, err := svc.ListReviews(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestListProductsFilter(t *testing.T) {
	svc, _, seller := newProductFixture(t)
	ctx := context.Background()

	for _, in := range []CreateProductInput{
		{Title: "Xôi gà", Category: product.CategoryBreakfast, Price: 25000, Stock: 5},
		{Title: "Xôi đậu", Category: product.CategoryBreakfast, Price: 20000, Stock: 5},
		{Title: "Chè bưởi", Category: product.CategoryDessert, Price: 15000, Stock: 3},
	} {
		_, err := svc.Create(ctx, seller, in)
		require.NoError(t, err)
	}

	list, total, err := svc.List(ctx, product.ListFilter{Category: product.CategoryBreakfast, Page: 1, Limit: 20}, GeoFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, total, err = svc.List(ctx, product.ListFilter{Search: "Chè", Page: 1, Limit: 20}, GeoFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Chè bưởi", list[0].Title)
}
