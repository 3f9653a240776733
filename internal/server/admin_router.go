package server

import (
	"time"

	"github.com/kataras/iris/v12"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/auth"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/config"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/infra/redis"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/repository/mysql"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/service"
)

// RegisterAdminRoutes 后台路由，独立进程部署在内网端口
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	a := &api{
		cfg:        cfg,
		users:      service.NewUserService(userRepo, &cfg.JWT),
		products:   service.NewProductService(productRepo, userRepo),
		orders:     service.NewOrderService(orderRepo, productRepo, userRepo, redisClient),
		userRepo:   userRepo,
		tokenCache: auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second),
	}

	apiParty := app.Party("/api", a.requireAuth, requireAdmin)

	users := apiParty.Party("/users")

	users.Get("/", func(ctx iris.Context) {
		list, err := a.users.ListAll(ctx.Request().Context())
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"users": list})
	})

	users.Put("/{id:int64}/role", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Role string `json:"role"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		u, err := a.users.UpdateRole(ctx.Request().Context(), id, req.Role)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Cập nhật vai trò thành công", "user": u})
	})

	users.Put("/{id:int64}/verify", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		var req struct {
			Verified bool `json:"verified"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			fail(ctx, iris.StatusBadRequest, "Dữ liệu không hợp lệ")
			return
		}
		u, err := a.users.SetVerified(ctx.Request().Context(), id, req.Verified)
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Cập nhật xác thực thành công", "user": u})
	})

	users.Delete("/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		if err := a.users.Delete(ctx.Request().Context(), id); err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"message": "Đã xóa người dùng"})
	})

	apiParty.Get("/orders", func(ctx iris.Context) {
		list, err := a.orders.ListAll(ctx.Request().Context())
		if err != nil {
			failErr(ctx, err)
			return
		}
		ok(ctx, iris.Map{"orders": list})
	})

	// 运行指标
	apiParty.Get("/stats", func(ctx iris.Context) {
		ok(ctx, iris.Map{"stats": service.GetMonitor().GetStats()})
	})
}

func requireAdmin(ctx iris.Context) {
	if u := currentUser(ctx); u == nil || u.Role != user.RoleAdmin {
		fail(ctx, iris.StatusForbidden, "Bạn không có quyền thực hiện thao tác này")
		return
	}
	ctx.Next()
}
