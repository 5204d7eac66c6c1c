package server

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec is a connect.Codec over plain structs. The service has no
// generated stubs; encoding/json covers every message type in this
// package, and registering the codec under the name "json" makes the
// handlers speak the Connect protocol with application/json bodies.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg interface{}) error {
	// Connect delivers empty bodies for empty messages; stdlib json
	// rejects zero bytes.
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// WithJSONCodec returns the codec option this service's handlers are
// registered with. Clients calling the service pass the same option to
// connect.NewClient.
func WithJSONCodec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
