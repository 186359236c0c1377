// Command tablemend loads a job config, reads one or more extractor dumps,
// runs table reconstruction, and writes the results to the configured
// destinations (database, workbook, stdout).
//
// Usage:
//
//	tablemend -config configs/jobs/sample.json [inputs...]
//	tablemend -config configs/jobs/sample.json -validate
//	tablemend -config configs/jobs/sample.json -serve :8080
//
// Positional inputs override the configured source path; each input is
// processed as an independent concurrent run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tablemend/internal/config"
	"tablemend/internal/export/xlsx"
	"tablemend/internal/extract"
	"tablemend/internal/metrics"
	"tablemend/internal/metrics/prompush"
	"tablemend/internal/reconstruct"
	"tablemend/internal/storage"
	"tablemend/internal/storage/postgres"
	"tablemend/internal/storage/sqlite"
	"tablemend/internal/webui"
)

func main() {
	var (
		cfgPath        string
		metricsBackend string
		pushGatewayURL string
		serveAddr      string
		validate       bool
	)

	flag.StringVar(&cfgPath, "config", "configs/jobs/sample.json", "job config JSON path")
	flag.StringVar(&metricsBackend, "metrics-backend", "none", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&serveAddr, "serve", "", "run the web UI on this address instead of a batch run")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.Parse()

	job, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidateJob(job)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid: %s", cfgPath)
	}
	if validate {
		log.Printf("configuration is valid: %s", cfgPath)
		return
	}

	setupMetrics(metricsBackend, pushGatewayURL, job.Job)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush: %v", err)
		}
	}()

	pol := reconstruct.PolicyFromOptions(job.Layout, job.Policy)
	ctx := context.Background()

	if serveAddr != "" {
		if err := webui.Run(ctx, webui.Config{Addr: serveAddr, Policy: pol}); err != nil {
			fatalf("webui: %v", err)
		}
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = []string{job.Source.File.Path}
	}

	sink, closeSink, err := openSink(ctx, job)
	if err != nil {
		fatalf("%v", err)
	}
	if closeSink != nil {
		defer closeSink()
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, input := range inputs {
		g.Go(func() error {
			return runOne(ctx, job, pol, input, len(inputs) > 1, sink)
		})
	}
	if err := g.Wait(); err != nil {
		fatalf("%v", err)
	}
}

// runOne processes a single input file end to end.
func runOne(ctx context.Context, job config.Job, pol reconstruct.Policy,
	input string, fanOut bool, sink storage.Sink) error {

	start := time.Now()

	rows, err := extract.ReadCSVFile(ctx, input, job.Reader.Options)
	if err != nil {
		metrics.RecordRun(job.Job, err, time.Since(start))
		return err
	}

	out, st, err := reconstruct.Run(rows, pol)
	if err != nil {
		metrics.RecordRun(job.Job, err, time.Since(start))
		return fmt.Errorf("%s: %w", input, err)
	}

	if sink != nil {
		n, err := sink.WriteRecords(ctx, out)
		if err != nil {
			metrics.RecordRun(job.Job, err, time.Since(start))
			return fmt.Errorf("%s: %w", input, err)
		}
		log.Printf("%s: stored %d records", input, n)
	}

	if job.Export.Kind == "xlsx" {
		path := job.Export.Path
		if fanOut {
			path = fanOutPath(path, input)
		}
		if err := xlsx.Write(path, job.Layout, out, st); err != nil {
			metrics.RecordRun(job.Job, err, time.Since(start))
			return fmt.Errorf("%s: %w", input, err)
		}
		log.Printf("%s: exported %s", input, path)
	}

	b, _ := json.Marshal(st)
	log.Printf("%s: %s", input, b)
	metrics.RecordRun(job.Job, nil, time.Since(start))
	return nil
}

// openSink builds the configured storage backend, or nil when persistence is
// disabled.
func openSink(ctx context.Context, job config.Job) (storage.Sink, func(), error) {
	switch job.Storage.Kind {
	case "":
		return nil, nil, nil
	case "sqlite":
		repo, closeFn, err := sqlite.NewRepository(ctx, job.Storage.DB, job.Layout)
		if err != nil {
			return nil, nil, err
		}
		return repo, closeFn, nil
	case "postgres":
		repo, closeFn, err := postgres.NewRepository(ctx, job.Storage.DB, job.Layout)
		if err != nil {
			return nil, nil, err
		}
		return repo, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage kind %q", job.Storage.Kind)
	}
}

// fanOutPath derives a per-input export path: out.xlsx + seats2.csv →
// out.seats2.xlsx.
func fanOutPath(exportPath, input string) string {
	ext := filepath.Ext(exportPath)
	base := strings.TrimSuffix(exportPath, ext)
	in := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + "." + in + ext
}

// setupMetrics installs the selected metrics backend; the nop backend remains
// otherwise.
func setupMetrics(name, gatewayURL, jobName string) {
	switch name {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		if jobName == "" {
			jobName = "tablemend"
		}
		b, err := prompush.NewBackend(jobName, gatewayURL)
		if err != nil {
			log.Printf("metrics: init pushgateway backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%s job=%s", gatewayURL, jobName)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
	}
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(1)
}
