package server

import (
	"time"

	"github.com/kataras/iris/v12"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/middleware"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/service"
)

type createOrderRequest struct {
	ProductID      int64      `json:"productId"`
	Quantity       int64      `json:"quantity"`
	DeliveryMethod string     `json:"deliveryMethod"`
	PaymentMethod  string     `json:"paymentMethod"`
	Notes          string     `json:"notes"`
	ScheduledTime  *time.Time `json:"scheduledTime"`
}

func (a *api) registerOrderRoutes(p iris.Party) {
	orders := p.Party("/orders")

	// 下单是唯一扣库存的入口，单独限流
	orders.Post("/", middleware.OrderRateLimit(), func(ctx iris.Context) {
		var req createOrderRequest
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		o, err := a.orders.Create(ctx.Request().Context(), service.CreateOrderInput{
			BuyerID:        currentUser(ctx).ID,
			ProductID:      req.ProductID,
			Quantity:       req.Quantity,
			DeliveryMethod: req.DeliveryMethod,
			PaymentMethod:  req.PaymentMethod,
			Notes:          req.Notes,
			ScheduledTime:  req.ScheduledTime,
		})
		if err != nil {
			failErr(ctx, err)
			return
		}
		created(ctx, iris.Map{"message": "Đặt hàng thành công", "order": o})
	})

	// 自己的订单，type=buyer|seller，status 可选
	orders.Get("/", func(ctx iris.Context) {
		role := ctx.URLParamDefault("type", "buyer")
		status := ctx.URLParam("status")
		list, err := a.orders.List(ctx.Request().Context(), currentUser(ctx).ID, role, status)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"orders": list})
	})

	// 全部订单，仅管理员
	orders.Get("/all", func(ctx iris.Context) {
		if currentUser(ctx).Role != user.RoleAdmin {
			fail(ctx, iris.StatusForbidden, "Bạn không có quyền thực hiện thao tác này")
			return
		}
		list, err := a.orders.ListAll(ctx.Request().Context())
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"orders": list})
	})

	orders.Get("/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		detail, err := a.orders.Get(ctx.Request().Context(), id, currentUser(ctx))
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"order": detail})
	})

	orders.Put("/{id:int64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		o, err := a.orders.UpdateStatus(ctx.Request().Context(), id, currentUser(ctx).ID, req.Status)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Cập nhật trạng thái thành công", "order": o})
	})

	orders.Put("/{id:int64}/cancel", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Reason string `json:"reason"`
		}
		// 取消原因可不填，空请求体也接受
		_ = ctx.ReadJSON(&req)
		o, err := a.orders.Cancel(ctx.Request().Context(), id, currentUser(ctx).ID, req.Reason)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Đã hủy đơn hàng", "order": o})
	})
}
