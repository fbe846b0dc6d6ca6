package autolist

import "futassist/lib/telemetry"

var tracer = telemetry.Tracer("futassist.services.autolist")
