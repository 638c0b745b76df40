package game

import (
	"math/rand"
	"sync"

	"wandworld/protocol"
)

// recordingSender 记录所有投递，可选地对指定收件人返回错误
type recordingSender struct {
	mu      sync.Mutex
	sent    []Outbound
	failFor map[ClientID]error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{failFor: make(map[ClientID]error)}
}

func (s *recordingSender) Send(to ClientID, env protocol.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[to]; ok {
		return err
	}
	s.sent = append(s.sent, Outbound{To: to, Envelope: env})
	return nil
}

func (s *recordingSender) outbox() Outbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(Outbox(nil), s.sent...)
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	s.sent = nil
	s.mu.Unlock()
}

// payloads 过滤出发给 id 的某类消息
func payloads[T any](out Outbox, to ClientID, typ string) []T {
	var res []T
	for _, m := range out {
		if m.To == to && m.Envelope.Type == typ {
			res = append(res, m.Envelope.Payload.(T))
		}
	}
	return res
}

func recipients(out Outbox, typ string) []ClientID {
	var res []ClientID
	for _, m := range out {
		if m.Envelope.Type == typ {
			res = append(res, m.To)
		}
	}
	return res
}

func testPlayer() *Player {
	return NewPlayer("p1", rand.New(rand.NewSource(1)))
}

func openWorld() *World {
	return NewWorld(WorldConfig{Rules: DefaultRules(), Seed: 1})
}
