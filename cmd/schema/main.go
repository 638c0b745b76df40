package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"wandworld/protocol"
)

// wireMessages 汇总所有线上消息体，便于一次生成 schema
type wireMessages struct {
	ClientMessage protocol.ClientMessage `json:"submit_intent"`
	IntentAck     protocol.IntentAck     `json:"intent_ack"`
	InitialState  protocol.InitialState  `json:"initial_state"`
	EnteredScene  protocol.PlayerPublic  `json:"entered_scene"`
	ExitedScene   protocol.PlayerExited  `json:"exited_scene"`
	SystemNotice  protocol.SystemNotice  `json:"system_notice"`
	ChatEvent     protocol.ChatEvent     `json:"chat_event"`
	WorldUpdate   protocol.WorldUpdate   `json:"world_update"`
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(wireMessages))
	schema.Title = "WandWorld Wire Protocol"
	schema.Description = "Payloads carried in {type, payload} envelopes, keyed by message type"
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
