package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec 负责消息在线上的编码格式
type Codec interface {
	Name() string
	// Binary 为 true 时使用二进制帧发送
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
	splitEnvelope(b []byte) (string, []byte, error)
}

// RawEnvelope 解开外壳但尚未解码 payload 的消息
type RawEnvelope struct {
	Type    string
	Payload []byte
	codec   Codec
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// CodecByName 按配置名选择编码
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return Msgpack, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// Encode 编码一个出站消息
func Encode(c Codec, env Envelope) ([]byte, error) {
	if env.Type == "" {
		return nil, fmt.Errorf("trying to encode envelope without type")
	}
	if env.Payload == nil {
		return nil, fmt.Errorf("trying to encode nil payload for %q", env.Type)
	}
	return c.Marshal(env)
}

// DecodeEnvelope 拆出消息类型，payload 留给 DecodePayload；出入站消息共用
func DecodeEnvelope(c Codec, b []byte) (RawEnvelope, error) {
	if len(b) == 0 {
		return RawEnvelope{}, fmt.Errorf("decode envelope: empty frame")
	}
	t, p, err := c.splitEnvelope(b)
	if err != nil {
		return RawEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return RawEnvelope{Type: t, Payload: p, codec: c}, nil
}

// DecodePayload 按目标类型解码 payload
func DecodePayload[T any](env RawEnvelope) (T, error) {
	var out T
	if len(env.Payload) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.Type)
	}
	c := env.codec
	if c == nil {
		c = JSON
	}
	err := c.Unmarshal(env.Payload, &out)
	return out, err
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Binary() bool { return false }
func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

func (jsonCodec) splitEnvelope(b []byte) (string, []byte, error) {
	var raw struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return "", nil, err
	}
	return raw.Type, raw.Payload, nil
}

// msgpack 复用 json 标签，两种编码字段名一致
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (c msgpackCodec) splitEnvelope(b []byte) (string, []byte, error) {
	var raw struct {
		Type    string             `msgpack:"type"`
		Payload msgpack.RawMessage `msgpack:"payload"`
	}
	if err := c.Unmarshal(b, &raw); err != nil {
		return "", nil, err
	}
	return raw.Type, raw.Payload, nil
}
