package credstore

import "futassist/lib/telemetry"

var tracer = telemetry.Tracer("futassist.lib.credstore")
