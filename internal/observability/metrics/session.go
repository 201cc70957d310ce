package metrics

import (
	"time"

	obserrors "github.com/target/vista-ui/internal/observability/errors"
	"github.com/target/vista-ui/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess    = "success"
	ResultError      = "error"
	ResultSuperseded = "superseded"
)

// SessionMetric captures one session operation for metric emission.
type SessionMetric struct {
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitSessionOperation emits standardised session operation metrics.
func EmitSessionOperation(sink statsd.Sink, in SessionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("session.operation", 1, tags)

	if in.Duration > 0 {
		sink.Timing("session.operation.duration", in.Duration, CloneTags(tags))
	}
}

// EmitAuthTransition counts a change of a client's authenticated flag.
func EmitAuthTransition(sink statsd.Sink, authenticated bool) {
	if sink == nil {
		return
	}
	state := "signed_out"
	if authenticated {
		state = "signed_in"
	}
	sink.Count("session.transition", 1, map[string]string{"state": state})
}

// EmitRegistrySize reports how many session stores are resident.
func EmitRegistrySize(sink statsd.Sink, size int) {
	if sink == nil {
		return
	}
	sink.Gauge("session.registry.size", float64(size), nil)
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
