package server

import (
	"github.com/kataras/iris/v12"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/product"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/service"
)

// registerPublicProductRoutes 商品浏览接口，未登录也可访问
func (a *api) registerPublicProductRoutes(p iris.Party) {
	products := p.Party("/products")

	// 列表：分类/关键字/分页，带坐标时查附近商品
	products.Get("/", func(ctx iris.Context) {
		filter := product.ListFilter{
			Category: ctx.URLParam("category"),
			Search:   ctx.URLParam("search"),
			Page:     ctx.URLParamIntDefault("page", 1),
			Limit:    ctx.URLParamIntDefault("limit", 20),
		}
		if filter.Page < 1 {
			filter.Page = 1
		}
		if filter.Limit < 1 || filter.Limit > 100 {
			filter.Limit = 20
		}

		var geo service.GeoFilter
		if ctx.URLParamExists("longitude") && ctx.URLParamExists("latitude") {
			geo.Enabled = true
			geo.Longitude, _ = ctx.URLParamFloat64("longitude")
			geo.Latitude, _ = ctx.URLParamFloat64("latitude")
			geo.MaxDistance, _ = ctx.URLParamFloat64("maxDistance")
		}

		list, total, err := a.products.List(ctx.Request().Context(), filter, geo)
		if err != nil {
			failErr(ctx, err)
			return
		}
		pages := total / int64(filter.Limit)
		if total%int64(filter.Limit) != 0 {
			pages++
		}
		ok(ctx, iris.Map{
			"products": list,
			"total":    total,
			"page":     filter.Page,
			"pages":    pages,
		})
	})

	// 详情，浏览数 +1
	products.Get("/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		p, err := a.products.Get(ctx.Request().Context(), id)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"product": p})
	})

	// 评价列表
	products.Get("/{id:int64}/reviews", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		reviews, err := a.products.ListReviews(ctx.Request().Context(), id)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"reviews": reviews})
	})

	// 卖家主页商品
	products.Get("/seller/{sellerId:int64}", func(ctx iris.Context) {
		sellerID, _ := ctx.Params().GetInt64("sellerId")
		list, err := a.products.ListBySeller(ctx.Request().Context(), sellerID)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"products": list})
	})
}

type createProductRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Price           int64    `json:"price"`
	Stock           int64    `json:"stock"`
	Images          []string `json:"images"`
	DeliveryOptions []string `json:"deliveryOptions"`
	DeliveryFee     int64    `json:"deliveryFee"`
	PickupDiscount  int64    `json:"pickupDiscount"`
	PreOrderOnly    bool     `json:"preOrderOnly"`
}

type updateProductRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	Price           *int64   `json:"price"`
	Stock           *int64   `json:"stock"`
	Images          []string `json:"images"`
	DeliveryOptions []string `json:"deliveryOptions"`
	DeliveryFee     *int64   `json:"deliveryFee"`
	PickupDiscount  *int64   `json:"pickupDiscount"`
	IsAvailable     *bool    `json:"isAvailable"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// registerProductRoutes 商品写接口，需登录
func (a *api) registerProductRoutes(p iris.Party) {
	products := p.Party("/products")

	products.Post("/", func(ctx iris.Context) {
		var req createProductRequest
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		pr, err := a.products.Create(ctx.Request().Context(), currentUser(ctx), service.CreateProductInput{
			Title:           req.Title,
			Description:     req.Description,
			Category:        req.Category,
			Price:           req.Price,
			Stock:           req.Stock,
			Images:          req.Images,
			DeliveryOptions: req.DeliveryOptions,
			DeliveryFee:     req.DeliveryFee,
			PickupDiscount:  req.PickupDiscount,
			PreOrderOnly:    req.PreOrderOnly,
		})
		if err != nil {
			failErr(ctx, err)
			return
		}
		created(ctx, iris.Map{"message": "Đăng sản phẩm thành công", "product": pr})
	})

	products.Put("/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req updateProductRequest
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		pr, err := a.products.Update(ctx.Request().Context(), id, currentUser(ctx), service.UpdateProductInput{
			Title:           req.Title,
			Description:     req.Description,
			Category:        req.Category,
			Price:           req.Price,
			Stock:           req.Stock,
			Images:          req.Images,
			DeliveryOptions: req.DeliveryOptions,
			DeliveryFee:     req.DeliveryFee,
			PickupDiscount:  req.PickupDiscount,
			IsAvailable:     req.IsAvailable,
		})
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Cập nhật sản phẩm thành công", "product": pr})
	})

	products.Delete("/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := a.products.Delete(ctx.Request().Context(), id, currentUser(ctx)); err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Đã xóa sản phẩm"})
	})

	products.Post("/{id:int64}/reviews", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req reviewRequest
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		pr, err := a.products.AddReview(ctx.Request().Context(), id, currentUser(ctx).ID, req.Rating, req.Comment)
		if err != nil {
			failErr(ctx, err)
			return
		}
		created(ctx, iris.Map{"message": "Đánh giá thành công", "product": pr})
	})
}
