package main

import (
	"flag"
	"log"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/config"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/server"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "配置文件所在目录")
	debug := flag.Bool("debug", false, "调试日志")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Init(*debug)
	defer func() { _ = zap.L().Sync() }()

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	zap.L().Info("web server starting", zap.String("addr", cfg.Server.Addr()))
	if err := app.Listen(cfg.Server.Addr()); err != nil {
		zap.L().Fatal("web server exited", zap.Error(err))
	}
}
