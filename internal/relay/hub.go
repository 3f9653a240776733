package relay

import (
	"sync"

	"go.uber.org/zap"
)

// Hub 维护在线连接与房间订阅关系，按房间做扇出广播。
// 不持久化、不保证送达，离线方依赖 REST 拉取历史消息。
type Hub struct {
	// Register / Unregister 连接注册通道
	Register   chan *Client
	Unregister chan *Client

	clients map[*Client]struct{}

	// rooms: roomID -> 订阅了该房间的连接集合
	rooms map[string]map[*Client]struct{}
	mu    sync.Mutex
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

// Run 主循环，处理连接的注册与注销
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.Register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			zap.L().Debug("relay client connected", zap.Int64("user_id", c.UserID))
		case c := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				for _, room := range h.rooms {
					delete(room, c)
				}
				close(c.send)
			}
			h.mu.Unlock()
			zap.L().Debug("relay client disconnected", zap.Int64("user_id", c.UserID))
		}
	}
}

// Join 将连接加入房间订阅。参与者校验由调用方（Client.handleMessage）完成。
func (h *Hub) Join(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[roomID] = room
	}
	room[c] = struct{}{}
}

// BroadcastRoom 把消息推给房间内除发起方之外的所有连接。
// 发不动的连接直接踢掉，慢消费者不能拖住整个房间。
func (h *Hub) BroadcastRoom(roomID string, senderID int64, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		if c.UserID == senderID {
			continue
		}
		select {
		case c.send <- message:
		default:
			delete(h.clients, c)
			for _, room := range h.rooms {
				delete(room, c)
			}
			close(c.send)
		}
	}
}

// RoomSize 房间当前在线连接数（测试与监控用）
func (h *Hub) RoomSize(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}
