package redis

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes a trace payload for storage in the stream. The codec name
// is stored alongside each entry so consumers know how to decode it.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Name() string
}

// JSON encodes payloads as JSON. The default.
type JSON struct{}

// Marshal implements Codec.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Msgpack encodes payloads as MessagePack, for denser streams under high
// call volume.
type Msgpack struct{}

// Marshal implements Codec.
func (Msgpack) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

// Name implements Codec.
func (Msgpack) Name() string { return "msgpack" }
