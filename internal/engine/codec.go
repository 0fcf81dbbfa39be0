package engine

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// The trading engine speaks the gateway-defined JSON contract over gRPC.
// Registering the codec once lets every call opt in via CallContentSubtype.
func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("engine codec: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string {
	return "json"
}
