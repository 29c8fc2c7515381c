package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/ratefit/internal/cli"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/okian/ratefit/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// The custom registry carries its own system metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx)
	_ = logger.Sync()
	if err != nil {
		metrics.RecordErrorByComponent("cli", "command")
		os.Stderr.WriteString("ratefit: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
