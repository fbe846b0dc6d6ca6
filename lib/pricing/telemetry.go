package pricing

import (
	"futassist/lib/restyutil"
	"futassist/lib/telemetry"
)

var tracer = telemetry.Tracer("futassist.lib.pricing")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
