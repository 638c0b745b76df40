package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/sasha-s/go-deadlock"

	"wandworld/game"
	"wandworld/protocol"
)

const (
	sendBuffer   = 64
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	maxFrameSize = 1 << 20 // 1MB
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	id     game.ClientID
	ws     *websocket.Conn
	binary bool

	mu     deadlock.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(id game.ClientID, ws *websocket.Conn, binary bool) *ClientConn {
	return &ClientConn{
		id:     id,
		ws:     ws,
		binary: binary,
		send:   make(chan []byte, sendBuffer),
	}
}

func (c *ClientConn) ID() game.ClientID { return c.id }

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃，不阻塞 Tick）
func (c *ClientConn) Enqueue(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return game.ErrNotConnected
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close 关闭发送队列与底层连接，可重复调用
func (c *ClientConn) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	_ = c.ws.Close()
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	frame := websocket.TextMessage
	if c.binary {
		frame = websocket.BinaryMessage
	}
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(frame, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端意图并提交给游戏，回执只发给本连接
func (s *Server) readPump(c *ClientConn) {
	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	codec := s.hub.Codec()
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debugw("read failed", "id", c.id, "error", err)
			}
			return
		}
		env, err := protocol.DecodeEnvelope(codec, payload)
		if err != nil {
			s.log.Debugw("dropping malformed frame", "id", c.id, "error", err)
			continue
		}
		if env.Type != protocol.MsgSubmitIntent {
			s.log.Debugw("dropping unknown message", "id", c.id, "type", env.Type)
			continue
		}
		intent, err := protocol.DecodePayload[protocol.Intent](env)
		if err != nil {
			s.log.Debugw("dropping malformed intent", "id", c.id, "error", err)
			continue
		}
		ack := s.game.Submit(c.id, intent)
		if err := s.hub.Send(c.id, protocol.Envelope{Type: protocol.MsgIntentAck, Payload: ack}); err != nil {
			s.log.Debugw("ack not delivered", "id", c.id, "error", err)
		}
	}
}

// HandleWS WebSocket 接入：分配 ID，注册连接，加入世界，直到连接断开
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id := game.ClientID(ulid.Make().String())
	c := NewClientConn(id, ws, s.hub.Codec().Binary())
	s.hub.Register(c)
	go c.writePump()

	if err := s.game.Connect(id); err != nil {
		s.log.Errorw("connect failed", "id", id, "error", err)
		s.hub.Unregister(c)
		c.Close()
		return
	}
	s.log.Infow("websocket connected", "id", id, "remote", r.RemoteAddr)

	s.readPump(c)

	s.game.Disconnect(id)
	s.hub.Unregister(c)
	c.Close()
	s.log.Infow("websocket closed", "id", id)
}
