package natsconn

import (
	"testing"
	"time"
)

func TestEnvInt(t *testing.T) {
	if v := envInt("HOMEFLIX_NATS_TEST_MISSING", 42); v != 42 {
		t.Fatalf("default: expected 42, got %d", v)
	}
	t.Setenv("HOMEFLIX_NATS_TEST_INT", "7")
	if v := envInt("HOMEFLIX_NATS_TEST_INT", 42); v != 7 {
		t.Fatalf("set: expected 7, got %d", v)
	}
	t.Setenv("HOMEFLIX_NATS_TEST_INT", "-3")
	if v := envInt("HOMEFLIX_NATS_TEST_INT", 42); v != 42 {
		t.Fatalf("negative falls back: expected 42, got %d", v)
	}
}

func TestEnvDuration(t *testing.T) {
	if v := envDuration("HOMEFLIX_NATS_TEST_MISSING", 5*time.Second); v != 5*time.Second {
		t.Fatalf("default: expected 5s, got %s", v)
	}
	t.Setenv("HOMEFLIX_NATS_TEST_DUR", "3s")
	if v := envDuration("HOMEFLIX_NATS_TEST_DUR", 5*time.Second); v != 3*time.Second {
		t.Fatalf("set: expected 3s, got %s", v)
	}
	t.Setenv("HOMEFLIX_NATS_TEST_DUR", "bogus")
	if v := envDuration("HOMEFLIX_NATS_TEST_DUR", 5*time.Second); v != 5*time.Second {
		t.Fatalf("invalid falls back: expected 5s, got %s", v)
	}
}

func TestConnect_FailsFastOnUnreachableServer(t *testing.T) {
	_, err := Connect(Options{
		URL:           "nats://127.0.0.1:19999",
		ReconnectWait: 10 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error connecting to unreachable NATS server")
	}
}
