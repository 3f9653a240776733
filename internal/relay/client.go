package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client 一条 websocket 连接与 Hub 之间的中间人
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	publisher Publisher

	// UserID 来自连接时的 JWT，房间订阅校验依据它
	UserID int64
}

// NewClient 创建连接客户端，publisher 可为 nil（事件只进不出的只读连接）
func NewClient(hub *Hub, conn *websocket.Conn, publisher Publisher, userID int64) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		publisher: publisher,
		UserID:    userID,
	}
}

// inbound 客户端上行协议
type inbound struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId"`
	MessageID int64           `json:"messageId,omitempty"`
	Message   json.RawMessage `json:"message,omitempty"`
}

// ReadPump 读循环：解析客户端事件并转发
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Warn("relay read error", zap.Error(err))
			}
			return
		}
		c.handleMessage(raw)
	}
}

// WritePump 写循环：下发事件并维持心跳
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		zap.L().Warn("relay bad frame", zap.Error(err))
		return
	}

	switch msg.Type {
	case "join-room":
		if !RoomParticipant(msg.RoomID, c.UserID) {
			zap.L().Warn("relay join rejected",
				zap.String("room_id", msg.RoomID),
				zap.Int64("user_id", c.UserID))
			return
		}
		c.hub.Join(c, msg.RoomID)
	case "send-message":
		c.publish(Event{
			Type:     EventReceiveMessage,
			RoomID:   msg.RoomID,
			SenderID: c.UserID,
			Payload:  msg.Message,
		})
	case "recall-message":
		payload, _ := json.Marshal(map[string]interface{}{
			"messageId": msg.MessageID,
			"roomId":    msg.RoomID,
		})
		c.publish(Event{
			Type:     EventRecallMessage,
			RoomID:   msg.RoomID,
			SenderID: c.UserID,
			Payload:  payload,
		})
	}
}

func (c *Client) publish(evt Event) {
	if c.publisher == nil {
		return
	}
	// 客户端必须是事件所属房间的参与者，防止拿到别人 roomId 后注入事件
	if !RoomParticipant(evt.RoomID, c.UserID) {
		return
	}
	if err := c.publisher.Publish(context.Background(), evt); err != nil {
		zap.L().Warn("relay publish failed", zap.Error(err))
	}
}
