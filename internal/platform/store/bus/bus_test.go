package bus

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func startServer(t *testing.T) *natsserver.Server {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	t.Cleanup(srv.Shutdown)
	return srv
}

type event struct {
	JobID string `json:"jobId"`
}

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	c := (*headerCarrier)(msg)

	if got := c.Get("traceparent"); got != "" {
		t.Fatalf("empty header gave %q", got)
	}
	if keys := c.Keys(); keys != nil {
		t.Fatalf("keys = %v", keys)
	}

	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("got %q", got)
	}
	if len(c.Keys()) != 1 {
		t.Fatalf("keys = %v", c.Keys())
	}
}

func TestOpen_EmptyURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPublishSubscribe_CarriesTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	srv := startServer(t)
	c, err := Open(context.Background(), Config{URL: srv.ClientURL(), Name: "bus-test"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	type got struct {
		ev  event
		tid trace.TraceID
	}
	ch := make(chan got, 1)
	unsub, err := c.Subscribe("imports.finished", func(ctx context.Context, data []byte) {
		ev, err := Decode[event](data)
		if err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		ch <- got{ev: ev, tid: trace.SpanContextFromContext(ctx).TraceID()}
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer func() { _ = unsub() }()

	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: tid, SpanID: sid, TraceFlags: trace.FlagsSampled,
	}))

	if err := c.PublishJSON(ctx, "imports.finished", event{JobID: "j1"}); err != nil {
		t.Fatalf("PublishJSON: %v", err)
	}

	select {
	case g := <-ch:
		if g.ev.JobID != "j1" {
			t.Fatalf("event = %+v", g.ev)
		}
		if g.tid != tid {
			t.Fatalf("trace id = %s, want %s", g.tid, tid)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	var c *Conn
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error on nil conn")
	}
}
