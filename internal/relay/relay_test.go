package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomParticipant(t *testing.T) {
	assert.True(t, RoomParticipant("1_2", 1))
	assert.True(t, RoomParticipant("1_2", 2))
	assert.False(t, RoomParticipant("1_2", 3))

	// 畸形 roomId
	assert.False(t, RoomParticipant("", 1))
	assert.False(t, RoomParticipant("12", 12))
	assert.False(t, RoomParticipant("1-2", 1))

	// 前缀不算匹配
	assert.False(t, RoomParticipant("11_2", 1))
}

func registerClient(t *testing.T, h *Hub, userID int64) *Client {
	t.Helper()
	c := NewClient(h, nil, nil, userID)
	h.Register <- c
	// Register 是异步处理的，等连接真正进了 clients 表
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		_, ok := h.clients[c]
		return ok
	}, time.Second, time.Millisecond)
	return c
}

func TestHubJoinAndBroadcast(t *testing.T) {
	h := NewHub()
	go h.Run()

	sender := registerClient(t, h, 1)
	receiver := registerClient(t, h, 2)

	h.Join(sender, "1_2")
	h.Join(receiver, "1_2")
	assert.Equal(t, 2, h.RoomSize("1_2"))

	h.BroadcastRoom("1_2", 1, []byte("xin chào"))

	// 发起方自己的连接不收
	select {
	case msg := <-receiver.send:
		assert.Equal(t, "xin chào", string(msg))
	case <-time.After(time.Second):
		t.Fatal("receiver got no message")
	}
	select {
	case <-sender.send:
		t.Fatal("sender should not receive its own message")
	default:
	}
}

func TestHubJoinRequiresRegistered(t *testing.T) {
	h := NewHub()
	go h.Run()

	ghost := NewClient(h, nil, nil, 9)
	h.Join(ghost, "1_9")
	assert.Zero(t, h.RoomSize("1_9"))
}

func TestHubBroadcastScopedToRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := registerClient(t, h, 1)
	b := registerClient(t, h, 3)
	h.Join(a, "1_2")
	h.Join(b, "3_4")

	h.BroadcastRoom("1_2", 2, []byte("riêng tư"))

	select {
	case <-b.send:
		t.Fatal("message leaked into another room")
	default:
	}
	select {
	case msg := <-a.send:
		assert.Equal(t, "riêng tư", string(msg))
	case <-time.After(time.Second):
		t.Fatal("room member got no message")
	}
}

func TestHubKicksSlowConsumer(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := registerClient(t, h, 2)
	h.Join(slow, "1_2")

	// 塞满发送缓冲后再广播一条，慢消费者被踢出房间
	for i := 0; i < cap(slow.send); i++ {
		h.BroadcastRoom("1_2", 1, []byte("flood"))
	}
	assert.Equal(t, 1, h.RoomSize("1_2"))

	h.BroadcastRoom("1_2", 1, []byte("last straw"))
	assert.Zero(t, h.RoomSize("1_2"))
}

func TestUnregisterLeavesRooms(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := registerClient(t, h, 1)
	h.Join(c, "1_2")
	require.Equal(t, 1, h.RoomSize("1_2"))

	h.Unregister <- c
	require.Eventually(t, func() bool {
		return h.RoomSize("1_2") == 0
	}, time.Second, time.Millisecond)

	// send 通道已被关闭
	_, open := <-c.send
	assert.False(t, open)
}
