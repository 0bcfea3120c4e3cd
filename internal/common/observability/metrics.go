package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// Observability records contract check timings through the OpenTelemetry
// metric API. The exporter writes into the given Prometheus registerer so the
// values are served from the same /metrics endpoint as the native collectors.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	checkCounter  otelmetric.Int64Counter
	checkDuration otelmetric.Float64Histogram
}

func New(serviceName string, reg promclient.Registerer) (*Observability, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	checkCounter, err := meter.Int64Counter(
		"contract.checks",
		otelmetric.WithDescription("Number of response contract checks"),
	)
	if err != nil {
		return nil, err
	}

	checkDuration, err := meter.Float64Histogram(
		"contract.check.duration",
		otelmetric.WithDescription("Response contract check duration"),
		otelmetric.WithUnit("us"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		checkCounter:  checkCounter,
		checkDuration: checkDuration,
	}, nil
}

// NewNoop returns an Observability that discards every measurement.
func NewNoop() *Observability {
	meter := noop.NewMeterProvider().Meter("noop")
	checkCounter, _ := meter.Int64Counter("contract.checks")
	checkDuration, _ := meter.Float64Histogram("contract.check.duration")
	return &Observability{meter: meter, checkCounter: checkCounter, checkDuration: checkDuration}
}

func (o *Observability) RecordContractCheck(ctx context.Context, handler string, duration time.Duration, ok bool) {
	result := "pass"
	if !ok {
		result = "fail"
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("handler", handler),
		attribute.String("result", result),
	)
	o.checkCounter.Add(ctx, 1, attrs)
	o.checkDuration.Record(ctx, float64(duration.Microseconds()), attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
