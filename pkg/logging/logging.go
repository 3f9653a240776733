package logging

import (
	"go.uber.org/zap"
)

// Init 初始化全局 zap logger，业务代码统一使用 zap.L()
func Init(debug bool) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}
