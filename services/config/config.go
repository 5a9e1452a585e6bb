package config

import (
	"context"
	"encoding/json"
	"errors"

	"teensy3-go/bus"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

type ctxKey struct{}

// WithBoard stores the board name the service looks its config up by.
func WithBoard(ctx context.Context, board string) context.Context {
	return context.WithValue(ctx, ctxKey{}, board)
}

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig publishes each top-level key of the board's embedded
// config as a retained message on config/<key>.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	board, _ := ctx.Value(ctxKey{}).(string)
	if board == "" {
		return errors.New("missing board name in context")
	}

	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for board: " + board)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.New("embedded config is not a JSON object: " + err.Error())
	}

	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config]", err.Error())
		}
	}()
}
