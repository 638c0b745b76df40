package server

import (
	"errors"
	"fmt"

	"github.com/sasha-s/go-deadlock"

	"wandworld/game"
	"wandworld/protocol"
)

// ErrSendBufferFull 客户端发送队列已满，消息被丢弃
var ErrSendBufferFull = errors.New("send buffer full")

// Hub 在线连接表，实现 game.Sender
type Hub struct {
	mu    deadlock.RWMutex
	conns map[game.ClientID]*ClientConn
	codec protocol.Codec
}

func NewHub(codec protocol.Codec) *Hub {
	return &Hub{
		conns: make(map[game.ClientID]*ClientConn),
		codec: codec,
	}
}

func (h *Hub) Codec() protocol.Codec { return h.codec }

func (h *Hub) Register(c *ClientConn) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
}

// Unregister 仅当表中仍是同一个连接时才移除
func (h *Hub) Unregister(c *ClientConn) {
	h.mu.Lock()
	if cur, ok := h.conns[c.id]; ok && cur == c {
		delete(h.conns, c.id)
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Send 编码并压入收件人的发送队列，不阻塞
func (h *Hub) Send(to game.ClientID, env protocol.Envelope) error {
	h.mu.RLock()
	c, ok := h.conns[to]
	h.mu.RUnlock()
	if !ok {
		return game.ErrNotConnected
	}
	b, err := protocol.Encode(h.codec, env)
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", env.Type, to, err)
	}
	if err := c.Enqueue(b); err != nil {
		return fmt.Errorf("send %s to %s: %w", env.Type, to, err)
	}
	return nil
}

// CloseAll 关闭所有连接，用于进程退出
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*ClientConn, 0, len(h.conns))
	for id, c := range h.conns {
		conns = append(conns, c)
		delete(h.conns, id)
	}
	h.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}
