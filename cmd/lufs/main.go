// Command lufs measures the loudness of audio files per ITU-R BS.1770-4.
//
// Usage:
//
//	lufs [flags] file ...
//
// It prints integrated loudness, short-term and momentary loudness,
// loudness range and true peak for every file, as a table or as JSON.
// Reports can also be written to a directory or an S3 bucket.
//
// Examples:
//
//	lufs mix.wav
//	lufs -format json -lra legacy *.flac
//	lufs -jobs 8 -out reports/ album/*.wav
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/soundyai/loudness/internal/config"
	"github.com/soundyai/loudness/internal/report"
	"github.com/soundyai/loudness/measure/loudness"
)

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args, getenv)
	if errors.Is(err, flag.ErrHelp) {
		config.PrintUsage(stderr)
		return 0
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n", err)
		config.PrintUsage(stderr)

		return 2
	}

	logger := newLogger(cfg, stderr)

	algo, err := loudness.ParseLRAAlgorithm(cfg.LRA)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 2
	}

	sinks, err := newSinks(cfg)
	if err != nil {
		logger.Error("report sinks", "error", err)
		return 2
	}

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	meter := loudness.NewMeter(
		loudness.WithLRAAlgorithm(algo),
		loudness.WithLogger(logger),
	)

	outcomes := analyzeAll(ctx, meter, cfg.Inputs, cfg.Jobs, sinks, logger)

	switch cfg.Format {
	case "json":
		err = printJSON(stdout, outcomes)
	default:
		err = printTable(stdout, outcomes)
	}

	if err != nil {
		logger.Error("write output", "error", err)
		return 1
	}

	for _, o := range outcomes {
		if o.Error != "" {
			return 1
		}
	}

	return 0
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func newSinks(cfg config.Config) ([]report.Sink, error) {
	var sinks []report.Sink

	if cfg.OutputDir != "" {
		sinks = append(sinks, report.FileSink{Dir: cfg.OutputDir})
	}

	if cfg.S3.Enabled() {
		s3, err := report.NewS3Sink(report.S3Config{
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, s3)
	}

	return sinks, nil
}

// outcome is the result for one input, in input order.
type outcome struct {
	Path   string         `json:"path"`
	Report *report.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// analyzeAll measures every input with at most jobs files in flight.
func analyzeAll(ctx context.Context, meter *loudness.Meter, inputs []string, jobs int, sinks []report.Sink, logger *slog.Logger) []outcome {
	outcomes := make([]outcome, len(inputs))
	keys := report.Keys(inputs)
	next := make(chan int)

	var wg sync.WaitGroup
	for range min(jobs, len(inputs)) {
		wg.Go(func() {
			for i := range next {
				outcomes[i] = analyzeOne(ctx, meter, inputs[i], keys[i], sinks, logger)
			}
		})
	}

	for i := range inputs {
		next <- i
	}
	close(next)

	wg.Wait()

	return outcomes
}

func analyzeOne(ctx context.Context, meter *loudness.Meter, path, key string, sinks []report.Sink, logger *slog.Logger) outcome {
	o := outcome{Path: path}

	r, err := report.Analyze(ctx, meter, path)
	if err != nil {
		logger.Warn("analysis failed", "file", path, "error", err)
		o.Error = err.Error()

		return o
	}

	logger.Info("analyzed", "file", path,
		"integrated", float64(r.Loudness.Integrated),
		"lra", r.Loudness.LRA,
		"true_peak", float64(r.TruePeak.TruePeakDBTP))

	for _, w := range r.Warnings {
		logger.Warn(w, "file", path)
	}

	if err := report.Publish(ctx, key, r, sinks...); err != nil {
		logger.Warn("publish report", "file", path, "error", err)
		o.Error = err.Error()
	}

	o.Report = &r

	return o
}

func printJSON(w io.Writer, outcomes []outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(outcomes)
}

func printTable(w io.Writer, outcomes []outcome) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "FILE\tINTEGRATED\tSHORT-TERM\tMOMENTARY\tLRA\tTRUE PEAK\tSTATUS\n")

	for _, o := range outcomes {
		if o.Report == nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\terror: %s\n", o.Path, o.Error)
			continue
		}

		l := o.Report.Loudness
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f LU\t%s\t%s\n",
			o.Path,
			formatLUFS(l.Integrated),
			formatLUFS(l.ShortTerm),
			formatLUFS(l.Momentary),
			l.LRA,
			formatDB(float64(o.Report.TruePeak.TruePeakDBTP), "dBTP"),
			status(o),
		)
	}

	return tw.Flush()
}

func formatLUFS(v loudness.LUFS) string {
	return formatDB(float64(v), "LUFS")
}

func formatDB(v float64, unit string) string {
	if v < -1000 {
		return "-inf " + unit
	}

	return fmt.Sprintf("%.1f %s", v, unit)
}

func status(o outcome) string {
	switch {
	case o.Error != "":
		return "error: " + o.Error
	case len(o.Report.Warnings) > 0:
		return o.Report.Warnings[0]
	case o.Report.Loudness.MeetsBroadcast:
		return "ok (EBU R128)"
	default:
		return "ok"
	}
}
