package identity

import (
	"futassist/lib/restyutil"
	"futassist/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("futassist.lib.platforms.ea.identity")
var meter = telemetry.Meter("futassist.lib.platforms.ea.identity")

var refreshCounter, _ = meter.Int64Counter(
	"identity.token_refresh",
	metric.WithDescription("access token refresh attempts, by outcome"),
)
var loginCounter, _ = meter.Int64Counter(
	"identity.login",
	metric.WithDescription("completed interactive logins"),
)

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
