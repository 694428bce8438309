package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Message is an interface for message types that can be registered and created dynamically.
// Each message must have a unique type identifier string.
type Message interface {
	Type() string
}

// MessageRegistry is a map of message type identifiers to their corresponding Go types.
// It provides a way to dynamically create message instances of registered types.
type MessageRegistry[M Message] map[string]reflect.Type

// Register adds one or more message types to the registry. Messages must be
// passed as pointers.
func (r MessageRegistry[M]) Register(msgs ...M) {
	for _, msg := range msgs {
		if _, ok := r[msg.Type()]; ok {
			panic(fmt.Sprintf("Message type %q was already registered", msg.Type()))
		}
		r[msg.Type()] = reflect.TypeOf(msg).Elem()
	}
}

func (r MessageRegistry[M]) Create(msgType string) (msg M, err error) {
	if t, ok := r[msgType]; ok {
		return reflect.New(t).Interface().(M), nil
	}
	err = fmt.Errorf("unknown message type: %q", msgType)
	return
}

// Decode parses a "<type> <json>" frame into a new message of the
// registered type. The payload may be omitted for messages without fields.
func (r MessageRegistry[M]) Decode(frame []byte) (msg M, err error) {
	msgType, payload, _ := bytes.Cut(bytes.TrimSpace(frame), []byte(" "))
	msg, err = r.Create(string(msgType))
	if err != nil {
		return msg, err
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(payload, msg); err != nil {
		return msg, fmt.Errorf("decode %s payload: %w", msgType, err)
	}
	return msg, nil
}

// Encode formats msg as a "<type> <json>" frame.
func Encode(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msg.Type(), err)
	}
	frame := make([]byte, 0, len(msg.Type())+1+len(payload))
	frame = append(frame, msg.Type()...)
	frame = append(frame, ' ')
	return append(frame, payload...), nil
}
