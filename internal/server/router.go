package server

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/auth"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/config"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/infra/mq"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/infra/redis"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/relay"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/repository/mysql"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/service"
)

// api 汇集路由处理需要的服务与基础设施
type api struct {
	cfg        *config.Config
	users      *service.UserService
	products   *service.ProductService
	orders     *service.OrderService
	chats      *service.ChatService
	userRepo   user.Repository
	tokenCache *auth.TokenCache
	hub        *relay.Hub
	publisher  relay.Publisher
}

// RegisterRoutes 初始化基础设施并注册全部前台路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	chatRepo := mysql.NewChatRepository(db)

	// 实时层：hub 做本地扇出，事件经 MQ 中转
	hub := relay.NewHub()
	go hub.Run()
	publisher, err := relay.NewMQPublisher(mqConn)
	if err != nil {
		log.Fatalf("failed to create relay publisher: %v", err)
	}
	if err := relay.StartConsumer(mqConn, hub); err != nil {
		log.Fatalf("failed to start relay consumer: %v", err)
	}

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	a := &api{
		cfg:        cfg,
		users:      service.NewUserService(userRepo, &cfg.JWT),
		products:   service.NewProductService(productRepo, userRepo),
		orders:     service.NewOrderService(orderRepo, productRepo, userRepo, redisClient),
		chats:      service.NewChatService(chatRepo, userRepo, publisher),
		userRepo:   userRepo,
		tokenCache: tokenCache,
		hub:        hub,
		publisher:  publisher,
	}

	// 上传目录：落盘 + 静态访问
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatalf("failed to create upload dir: %v", err)
	}
	app.HandleDir("/uploads", iris.Dir(cfg.Upload.Dir))

	apiParty := app.Party("/api")

	// 健康检查
	apiParty.Get("/health", func(ctx iris.Context) {
		ok(ctx, iris.Map{"status": "ok"})
	})

	a.registerAuthRoutes(apiParty)

	// 商品浏览无需登录
	a.registerPublicProductRoutes(apiParty)

	authed := apiParty.Party("/", a.requireAuth)
	a.registerProductRoutes(authed)
	a.registerOrderRoutes(authed)
	a.registerChatRoutes(authed)
	a.registerUserRoutes(authed)
	a.registerUploadRoutes(authed)

	a.registerWebsocket(app)
}

// requireAuth 解析 Bearer token（优先走缓存）并加载请求级用户记录
func (a *api) requireAuth(ctx iris.Context) {
	raw := ctx.GetHeader("Authorization")
	token := strings.TrimPrefix(raw, "Bearer ")
	if token == "" {
		fail(ctx, iris.StatusUnauthorized, "Vui lòng đăng nhập")
		return
	}

	claims, hit, err := a.tokenCache.Get(ctx.Request().Context(), token)
	if err != nil {
		service.GetMonitor().RecordRedisError()
		zap.L().Warn("token cache get failed", zap.Error(err))
	}
	if !hit {
		claims, err = auth.ParseToken(&a.cfg.JWT, token)
		if err != nil {
			fail(ctx, iris.StatusUnauthorized, "Phiên đăng nhập không hợp lệ")
			return
		}
		if err := a.tokenCache.Set(ctx.Request().Context(), token, claims); err != nil {
			service.GetMonitor().RecordRedisError()
		}
	}

	u, err := a.userRepo.GetByID(ctx.Request().Context(), claims.UserID)
	if err != nil {
		fail(ctx, iris.StatusUnauthorized, "Tài khoản không tồn tại")
		return
	}
	ctx.Values().Set("user", u)
	ctx.Next()
}

// currentUser 取出 requireAuth 放入的用户记录
func currentUser(ctx iris.Context) *user.User {
	u, _ := ctx.Values().Get("user").(*user.User)
	return u
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 社区应用前端与 API 不同源
	CheckOrigin: func(r *http.Request) bool { return true },
}

// registerWebsocket 实时通道。浏览器 WebSocket 无法带 header，token 走 query。
func (a *api) registerWebsocket(app *iris.Application) {
	app.Get("/ws", func(ctx iris.Context) {
		token := ctx.URLParam("token")
		claims, err := auth.ParseToken(&a.cfg.JWT, token)
		if err != nil {
			fail(ctx, iris.StatusUnauthorized, "Phiên đăng nhập không hợp lệ")
			return
		}

		conn, err := wsUpgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
		if err != nil {
			zap.L().Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := relay.NewClient(a.hub, conn, a.publisher, claims.UserID)
		a.hub.Register <- client
		go client.WritePump()
		go client.ReadPump()
	})
}
