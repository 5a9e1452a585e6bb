package config

import (
	"context"
	"testing"
	"time"

	"teensy3-go/bus"
)

func withLookup(t *testing.T, f func(string) ([]byte, bool)) {
	t.Helper()
	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = f
	t.Cleanup(func() { EmbeddedConfigLookup = old })
}

// drain collects config/<key> payloads until want keys arrive or time runs out.
func drain(t *testing.T, sub *bus.Subscription, want int) map[string]any {
	t.Helper()
	got := map[string]any{}
	deadline := time.After(500 * time.Millisecond)
	for len(got) < want {
		select {
		case m := <-sub.Channel():
			if len(m.Topic) != 2 || m.Topic[0] != configPrefix || !m.Retained {
				t.Fatalf("unexpected message on %v (retained=%v)", m.Topic, m.Retained)
			}
			key, ok := m.Topic[1].(string)
			if !ok {
				t.Fatalf("key token %T, want string", m.Topic[1])
			}
			got[key] = m.Payload
		case <-deadline:
			t.Fatalf("got %d of %d keys: %v", len(got), want, got)
		}
	}
	return got
}

func TestStartPublishesEachKeyRetained(t *testing.T) {
	withLookup(t, func(board string) ([]byte, bool) {
		if board != "teensy32" {
			return nil, false
		}
		return []byte(`{"heartbeat": {"interval_ms": 250}, "debug": true, "name": "bench"}`), true
	})

	b := bus.NewBus(8)
	NewConfigService().Start(WithBoard(context.Background(), "teensy32"), b.NewConnection("config"))

	// Subscribing late still sees every key, since they are retained.
	time.Sleep(20 * time.Millisecond)
	got := drain(t, b.NewConnection("reader").Subscribe(bus.T(configPrefix, "#")), 3)

	hb, ok := got["heartbeat"].(map[string]any)
	if !ok || hb["interval_ms"] != float64(250) {
		t.Fatalf("heartbeat = %#v", got["heartbeat"])
	}
	if got["debug"] != true || got["name"] != "bench" {
		t.Fatalf("scalars = %#v %#v", got["debug"], got["name"])
	}
}

func TestPublishConfigNeedsBoard(t *testing.T) {
	conn := bus.NewBus(4).NewConnection("test")
	if err := NewConfigService().publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error without a board name")
	}
}

func TestPublishConfigUnknownBoard(t *testing.T) {
	conn := bus.NewBus(4).NewConnection("test")
	if err := NewConfigService().publishConfig(WithBoard(context.Background(), "teensy99"), conn); err == nil {
		t.Fatal("expected error for a board without config")
	}
}

func TestRejectsNonObject(t *testing.T) {
	withLookup(t, func(string) ([]byte, bool) { return []byte(`[1,2]`), true })
	conn := bus.NewBus(4).NewConnection("test")
	if err := NewConfigService().publishConfig(WithBoard(context.Background(), "teensy32"), conn); err == nil {
		t.Fatal("expected error for array config")
	}
}

func TestEmbeddedBoardsDecode(t *testing.T) {
	for _, board := range []string{"teensy32", "teensy36"} {
		b := bus.NewBus(8)
		conn := b.NewConnection("test-" + board)
		if err := NewConfigService().publishConfig(WithBoard(context.Background(), board), conn); err != nil {
			t.Fatalf("%s: %v", board, err)
		}
		got := drain(t, conn.Subscribe(bus.T(configPrefix, "+")), 2)
		hal, ok := got["hal"].(map[string]any)
		if !ok {
			t.Fatalf("%s: hal payload %T", board, got["hal"])
		}
		if devs, _ := hal["devices"].([]any); len(devs) == 0 {
			t.Fatalf("%s: no devices", board)
		}
		if _, ok := got["heartbeat"].(map[string]any); !ok {
			t.Fatalf("%s: heartbeat payload %T", board, got["heartbeat"])
		}
	}
}
