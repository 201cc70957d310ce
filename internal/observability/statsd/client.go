// Package statsd emits DogStatsD-style metrics over UDP.
package statsd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sink describes the minimal interface required to emit StatsD-style metrics.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

const (
	defaultMaxPacket     = 1432
	defaultFlushInterval = time.Second
	defaultQueueSize     = 1024
)

// Config describes how to connect to a StatsD-compatible sink.
type Config struct {
	Enabled    bool
	Address    string
	Prefix     string
	Logger     *slog.Logger
	GlobalTags map[string]string
	// MaxPacketSize bounds one datagram; lines are packed newline-separated.
	MaxPacketSize int
	FlushInterval time.Duration
	// QueueSize bounds buffered lines; lines beyond it are dropped.
	QueueSize int
}

// Client queues metric lines and ships them in packed UDP datagrams from a
// background goroutine. Emitting never blocks the caller. It is safe for
// concurrent use.
type Client struct {
	prefix     string
	globalTags map[string]string
	maxPacket  int
	logger     *slog.Logger

	conn  net.Conn
	lines chan string
	done  chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	dropped   int64
}

var _ Sink = (*Client)(nil)

// NewClient dials the configured endpoint and starts the sender. A disabled
// config or empty address yields a client that discards everything.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		prefix:     sanitizePrefix(cfg.Prefix),
		globalTags: cloneTags(cfg.GlobalTags),
		maxPacket:  positiveOr(cfg.MaxPacketSize, defaultMaxPacket),
		logger:     logger.With("component", "statsd"),
	}

	address := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || address == "" {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}

	c.conn = conn
	c.lines = make(chan string, positiveOr(cfg.QueueSize, defaultQueueSize))
	c.done = make(chan struct{})
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	go c.run(interval)
	return c, nil
}

// Enabled reports whether the client actively emits metrics.
func (c *Client) Enabled() bool {
	return c != nil && c.lines != nil
}

// Dropped reports how many lines were discarded because the queue was full.
func (c *Client) Dropped() int64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Count increments a counter metric.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.enqueue(name, strconv.FormatInt(value, 10)+"|c", tags)
}

// Gauge records the current value for a gauge metric.
func (c *Client) Gauge(name string, value float64, tags map[string]string) {
	c.enqueue(name, formatFloat(value)+"|g", tags)
}

// Timing records a timing metric in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.enqueue(name, formatFloat(ms)+"|ms", tags)
}

// Close flushes queued lines and releases the UDP connection.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		defer c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) enqueue(name, payload string, tags map[string]string) {
	if !c.Enabled() {
		return
	}
	line := formatLine(c.metricName(name), payload, c.globalTags, tags)
	if line == "" {
		return
	}
	select {
	case <-c.done:
	case c.lines <- line:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

func (c *Client) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		c.send(buf.String())
		buf.Reset()
	}
	add := func(line string) {
		if buf.Len() > 0 && buf.Len()+1+len(line) > c.maxPacket {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}

	for {
		select {
		case line := <-c.lines:
			add(line)
		case <-ticker.C:
			flush()
		case <-c.done:
			for {
				select {
				case line := <-c.lines:
					add(line)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (c *Client) send(packet string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.conn.Write([]byte(packet)); err != nil {
		c.logger.Debug("statsd write failed", "error", err)
	}
}

func (c *Client) metricName(name string) string {
	normalized := normalizeMetricName(name)
	if normalized == "" {
		return ""
	}
	if c.prefix == "" {
		return normalized
	}
	return c.prefix + "." + normalized
}

func formatLine(metric, payload string, global, local map[string]string) string {
	if metric == "" {
		return ""
	}
	return metric + ":" + payload + formatTags(global, local)
}

func sanitizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), ".")
}

func normalizeMetricName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	n = strings.NewReplacer(" ", "_", "/", "_", ":", "_", "|", "_").Replace(n)
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	return strings.Trim(n, ".")
}

func formatTags(global, local map[string]string) string {
	merged := make(map[string]string, len(global)+len(local))
	for _, src := range []map[string]string{global, local} {
		for k, v := range src {
			if key := strings.TrimSpace(k); key != "" {
				merged[key] = strings.TrimSpace(v)
			}
		}
	}
	if len(merged) == 0 {
		return ""
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + ":" + merged[k]
	}
	return "|#" + strings.Join(pairs, ",")
}

func cloneTags(tags map[string]string) map[string]string {
	cp := make(map[string]string, len(tags))
	for k, v := range tags {
		if key := strings.TrimSpace(k); key != "" {
			cp[key] = strings.TrimSpace(v)
		}
	}
	return cp
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
