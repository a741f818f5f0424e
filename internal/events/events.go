// Package events defines the transition event published through the outbox.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"bizflow/internal/models"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatProto Format = "proto"
)

type TransitionEvent struct {
	TransitionID string        `json:"transition_id"`
	RecordID     string        `json:"record_id"`
	Kind         models.Kind   `json:"kind"`
	From         models.Status `json:"from"`
	To           models.Status `json:"to"`
	Label        string        `json:"label"`
	Variant      string        `json:"variant"`
	Actor        string        `json:"actor,omitempty"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatProto:
		return FormatProto, nil
	default:
		return "", fmt.Errorf("unknown event format %q", s)
	}
}

// Encode serializes e for the wire. Proto encoding wraps the JSON shape in a
// google.protobuf.Struct so consumers need no generated types.
func Encode(e TransitionEvent, f Format) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	if f != FormatProto {
		return raw, nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("event fields: %w", err)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("event struct: %w", err)
	}
	b, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal proto event: %w", err)
	}
	return b, nil
}

func Decode(b []byte, f Format) (TransitionEvent, error) {
	var e TransitionEvent
	raw := b
	if f == FormatProto {
		st := &structpb.Struct{}
		if err := proto.Unmarshal(b, st); err != nil {
			return e, fmt.Errorf("unmarshal proto event: %w", err)
		}
		var err error
		if raw, err = st.MarshalJSON(); err != nil {
			return e, fmt.Errorf("event struct to json: %w", err)
		}
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}
