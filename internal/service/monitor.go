package service

import (
	"sync"
	"time"
)

// Monitor 进程内运营指标，后台 /api/stats 直接读取
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	DBErrors    int64
	RedisErrors int64
	MQErrors    int64

	// 业务统计
	OrderRequests    int64
	OrdersCreated    int64
	OrdersCancelled  int64
	OrderFailures    int64
	MessagesSent     int64
	MessagesRecalled int64
	RelayEvents      int64

	// 时间统计
	LastDBError     time.Time
	LastOrderTime   time.Time
	LastMessageTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordRedisError 记录 Redis 错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
}

// RecordMQError 记录 MQ 错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
}

// RecordOrderRequest 记录一次下单请求
func (m *Monitor) RecordOrderRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderRequests++
	m.LastOrderTime = time.Now()
}

// RecordOrderCreated 记录下单成功
func (m *Monitor) RecordOrderCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersCreated++
}

// RecordOrderCancelled 记录订单取消
func (m *Monitor) RecordOrderCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrdersCancelled++
}

// RecordOrderFailure 记录下单失败（含库存不足）
func (m *Monitor) RecordOrderFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderFailures++
}

// RecordMessageSent 记录消息发送
func (m *Monitor) RecordMessageSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSent++
	m.LastMessageTime = time.Now()
}

// RecordMessageRecalled 记录消息撤回
func (m *Monitor) RecordMessageRecalled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesRecalled++
}

// RecordRelayEvent 记录一次实时事件转发
func (m *Monitor) RecordRelayEvent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RelayEvents++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orderSuccessRate := float64(0)
	if m.OrderRequests > 0 {
		orderSuccessRate = float64(m.OrdersCreated) / float64(m.OrderRequests) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"db":    m.DBErrors,
			"redis": m.RedisErrors,
			"mq":    m.MQErrors,
		},
		"orders": map[string]interface{}{
			"requests":     m.OrderRequests,
			"created":      m.OrdersCreated,
			"cancelled":    m.OrdersCancelled,
			"failures":     m.OrderFailures,
			"success_rate": orderSuccessRate,
		},
		"chat": map[string]interface{}{
			"sent":         m.MessagesSent,
			"recalled":     m.MessagesRecalled,
			"relay_events": m.RelayEvents,
		},
		"last_events": map[string]interface{}{
			"db_error":     m.LastDBError,
			"last_order":   m.LastOrderTime,
			"last_message": m.LastMessageTime,
		},
	}
}

// Reset 重置统计（测试用）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors = 0
	m.RedisErrors = 0
	m.MQErrors = 0
	m.OrderRequests = 0
	m.OrdersCreated = 0
	m.OrdersCancelled = 0
	m.OrderFailures = 0
	m.MessagesSent = 0
	m.MessagesRecalled = 0
	m.RelayEvents = 0
}
