// Package telemetry records slot transitions.
package telemetry

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/mamameal/docgenctl/kernel/config"
	"github.com/mamameal/docgenctl/kernel/slot"
	"github.com/michaelquigley/pfxlog"
)

const measurement = "slot_transition"

type Recorder interface {
	Observe(tr slot.Transition)
	Close()
}

type nopRecorder struct{}

func (nopRecorder) Observe(slot.Transition) {}

func (nopRecorder) Close() {}

func Nop() Recorder {
	return nopRecorder{}
}

// InfluxRecorder queues one point per transition on the client's batching writer, so
// Observe never waits on the network. Write failures are logged and dropped.
type InfluxRecorder struct {
	client  influxdb2.Client
	writer  api.WriteAPI
	drained chan struct{}
}

func NewInfluxRecorder(cfg config.InfluxConfig) *InfluxRecorder {
	opts := influxdb2.DefaultOptions().
		SetBatchSize(50).
		SetFlushInterval(1000).
		SetMaxRetries(0)
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)
	r := &InfluxRecorder{
		client:  client,
		writer:  client.WriteAPI(cfg.Org, cfg.Bucket),
		drained: make(chan struct{}),
	}
	go r.drainErrors()
	return r
}

func (r *InfluxRecorder) drainErrors() {
	defer close(r.drained)
	for err := range r.writer.Errors() {
		pfxlog.Logger().WithError(err).Warn("unable to record slot transition")
	}
}

// FromConfig returns an InfluxRecorder when influx is configured, else a no-op.
func FromConfig(cfg config.InfluxConfig) Recorder {
	if !cfg.Enabled() {
		return Nop()
	}
	return NewInfluxRecorder(cfg)
}

func (r *InfluxRecorder) Observe(tr slot.Transition) {
	p := influxdb2.NewPoint(measurement,
		map[string]string{
			"kind": string(tr.Kind),
			"from": tr.From.State.String(),
			"to":   tr.To.State.String(),
		},
		map[string]interface{}{
			"submission": tr.SubmissionId,
			"message":    tr.To.Message,
		},
		tr.At,
	)

	r.writer.WritePoint(p)
}

// Close flushes queued points and stops the writer.
func (r *InfluxRecorder) Close() {
	r.writer.Flush()
	r.client.Close()
	<-r.drained
}
