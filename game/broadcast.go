package game

import (
	"errors"

	"wandworld/protocol"
)

// ErrNotConnected 收件人已断开，属于正常的过期引用
var ErrNotConnected = errors.New("client not connected")

// Sender 抽象的消息通道，由传输层实现（需并发安全）
type Sender interface {
	Send(to ClientID, env protocol.Envelope) error
}

// Outbound 一条带收件人的出站消息
type Outbound struct {
	To       ClientID
	Envelope protocol.Envelope
}

// Outbox 状态变更产生的待投递消息，按产生顺序投递
type Outbox []Outbound

func (o *Outbox) send(to ClientID, typ string, payload any) {
	*o = append(*o, Outbound{To: to, Envelope: protocol.Envelope{Type: typ, Payload: payload}})
}

func (o *Outbox) notice(to ClientID, key, severity string, placeholders map[string]any) {
	o.send(to, protocol.MsgSystemNotice, newNotice(key, severity, placeholders))
}

// deliver 逐条投递；单个收件人失败只记录日志，不影响其他人
func (g *Game) deliver(out Outbox) {
	for _, m := range out {
		err := g.sender.Send(m.To, m.Envelope)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotConnected):
			g.metrics.IncStale()
		default:
			g.metrics.IncDeliveryFailed()
			g.log.Warnw("delivery failed", "to", m.To, "type", m.Envelope.Type, "error", err)
		}
	}
}
