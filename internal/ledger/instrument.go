package ledger

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/gabapcia/powledger/internal/ledger"

// Instruments come from the global providers, so they start reporting once
// telemetry.Init installs real ones.
var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	miningAttempts metric.Int64Counter
	miningDuration metric.Float64Histogram
	validationRuns metric.Int64Counter
)

func init() {
	var err error

	miningAttempts, err = meter.Int64Counter("ledger.mining.attempts",
		metric.WithDescription("Nonces tried while searching for proof of work."),
	)
	if err != nil {
		otel.Handle(err)
	}

	miningDuration, err = meter.Float64Histogram("ledger.mining.duration",
		metric.WithDescription("Wall time spent in a proof-of-work search."),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}

	validationRuns, err = meter.Int64Counter("ledger.validation.runs",
		metric.WithDescription("Chain validations, by outcome."),
	)
	if err != nil {
		otel.Handle(err)
	}
}
