// Package bus is a thin nats client that carries trace context in message headers
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// Config configures the nats connection
type Config struct {
	URL  string
	Name string

	// ConnectTimeout bounds the initial dial; zero uses the nats default
	ConnectTimeout time.Duration
}

// Handler receives the raw payload with the publisher's trace context restored
type Handler func(ctx context.Context, data []byte)

// Conn wraps a nats connection
type Conn struct {
	nc *nats.Conn
}

// headerCarrier adapts nats message headers to the otel TextMapCarrier
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Open dials nats and waits until the first flush round trips
func Open(ctx context.Context, cfg Config) (*Conn, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("bus: empty url")
	}
	opts := []nats.Option{nats.Name(cfg.Name)}
	if cfg.ConnectTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnectTimeout))
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("bus: connect: %w", err)
	}
	if err := flush(ctx, nc); err != nil {
		nc.Close()
		return nil, fmt.Errorf("bus: flush: %w", err)
	}
	return &Conn{nc: nc}, nil
}

// Wrap adopts an existing connection
func Wrap(nc *nats.Conn) *Conn { return &Conn{nc: nc} }

// PublishJSON marshals v and publishes it with the trace context of ctx
func (c *Conn) PublishJSON(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("bus: marshal: %w", err)
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return c.nc.PublishMsg(msg)
}

// Subscribe registers fn on subject; the returned func unsubscribes
func (c *Conn) Subscribe(subject string, fn Handler) (func() error, error) {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		fn(ctx, msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("bus: subscribe %s: %w", subject, err)
	}
	return sub.Unsubscribe, nil
}

// Ping round trips to the server
func (c *Conn) Ping(ctx context.Context) error {
	if c == nil || c.nc == nil {
		return errors.New("bus: nil conn")
	}
	return flush(ctx, c.nc)
}

// flush needs a deadline on ctx; nats rejects contexts without one
func flush(ctx context.Context, nc *nats.Conn) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return nc.FlushWithContext(ctx)
}

// Close drains pending messages then closes
func (c *Conn) Close() error {
	if c == nil || c.nc == nil {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return err
	}
	return nil
}

// Decode unmarshals a payload delivered to a Handler
func Decode[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}
