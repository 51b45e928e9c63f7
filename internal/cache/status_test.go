package cache

import (
	"context"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if got := key("BO.3161.04.M1"); got != "equipment:status:BO.3161.04.M1" {
		t.Fatalf("key = %s", got)
	}
}

func TestConnectUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Connect(ctx, "127.0.0.1:1"); err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}
