package main

import (
	"flag"
	"fmt"
	"os"

	"finance/internal/cli"
	applog "finance/internal/log"
	"finance/internal/report"
	"finance/internal/services"
)

// Command line flags
var (
	formatFlag  = flag.String("format", "text", "Table style: text or markdown")
	summaryOnly = flag.Bool("summary-only", false, "Print only the summary tables")
)

func main() {
	flag.Parse()

	format, err := report.ParseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger("warn").WithComponent(applog.ComponentReport)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backend, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if backend.Cleanup != nil {
		defer backend.Cleanup()
	}

	svc := services.NewTransactionService(backend.Store, nil)

	if !*summaryOnly {
		items, err := svc.List(ctx)
		if err != nil {
			logger.Error("Failed to list transactions", applog.FieldError, err)
			os.Exit(1)
		}
		fmt.Printf("Transactions (%d)\n\n", len(items))
		report.WriteTransactions(os.Stdout, format, items)
		fmt.Println()
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		logger.Error("Failed to compute summary", applog.FieldError, err)
		os.Exit(1)
	}
	fmt.Print("Summary\n\n")
	report.WriteSummary(os.Stdout, format, summary)
}
