package commands

import (
	"context"
	"futassist/lib/platforms/ea/identity"
	"futassist/lib/platforms/ea/utas"
	"futassist/lib/pricing"
	"futassist/lib/restyutil"
	"futassist/lib/serviceutil"
	"futassist/lib/telemetry"
	"log/slog"
	"path/filepath"
)

var tel telemetry.Telemetry

func initTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	var err error
	tel, err = telemetry.SetupFromEnv(ctx, "futassist")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}
	config, err := ReadConfig(*configPath)
	if err != nil {
		return
	}

	outputs := []struct {
		name string
		set  func(restyutil.InstrumentOutput)
	}{
		{name: "identity", set: identity.SetRestyInstrumentOutput},
		{name: "utas", set: utas.SetRestyInstrumentOutput},
		{name: "pricing", set: pricing.SetRestyInstrumentOutput},
	}
	for _, o := range outputs {
		dir := filepath.Join(config.DumpDir, o.name)
		out, err := restyutil.NewFilesystemOutput(dir)
		if err != nil {
			slog.Warn("failed to create http dump directory", "dir", dir, "err", err)
			continue
		}
		o.set(out)
	}
}

func shutdownTelemetry() {
	err := tel.Shutdown(context.Background())
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
}
