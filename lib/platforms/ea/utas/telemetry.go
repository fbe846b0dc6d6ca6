package utas

import (
	"futassist/lib/restyutil"
	"futassist/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("futassist.lib.platforms.ea.utas")
var meter = telemetry.Meter("futassist.lib.platforms.ea.utas")

var pageRetryCounter, _ = meter.Int64Counter(
	"utas.club_page_retry",
	metric.WithDescription("failed club page requests that were retried or abandoned"),
)
var listingCounter, _ = meter.Int64Counter(
	"utas.listing",
	metric.WithDescription("listing submissions, by outcome"),
)

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
