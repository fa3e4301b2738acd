// Package config parses and validates the lufs command-line configuration.
//
// Every flag has an environment fallback named LUFS_<FLAG>; S3 credentials
// additionally fall back to AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.
// Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxJobs bounds the worker pool.
const MaxJobs = 64

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// S3 holds the optional report upload target.
type S3 struct {
	Bucket          string `json:"bucket" validate:"omitempty,min=3,max=63"`
	Endpoint        string `json:"endpoint" validate:"omitempty,url"`
	Region          string `json:"region" validate:"omitempty,max=64"`
	AccessKeyID     string `json:"access_key_id" validate:"required_with=Bucket"`
	SecretAccessKey string `json:"secret_access_key" validate:"required_with=Bucket"`
	Prefix          string `json:"prefix" validate:"omitempty,max=512"`
}

// Enabled reports whether uploads are requested.
func (s S3) Enabled() bool {
	return s.Bucket != ""
}

// Config is the complete CLI configuration.
type Config struct {
	Inputs    []string      `json:"inputs" validate:"min=1,dive,required"`
	Format    string        `json:"format" validate:"oneof=table json"`
	Jobs      int           `json:"jobs" validate:"gte=1,lte=64"`
	OutputDir string        `json:"output_dir"`
	LogLevel  string        `json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string        `json:"log_format" validate:"oneof=text json"`
	LRA       string        `json:"lra" validate:"oneof=r128 legacy"`
	Timeout   time.Duration `json:"timeout" validate:"gte=0"`
	S3        S3            `json:"s3"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Format:    "table",
		Jobs:      min(runtime.NumCPU(), MaxJobs),
		LogLevel:  "info",
		LogFormat: "text",
		LRA:       "r128",
	}
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Parse reads flags from args with environment fallbacks from getenv, and
// validates the result. It returns flag.ErrHelp for -h.
func Parse(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	fs := newFlagSet(&cfg, io.Discard)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Inputs = fs.Args()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// PrintUsage writes the flag documentation to w.
func PrintUsage(w io.Writer) {
	cfg := Default()
	fs := newFlagSet(&cfg, w)

	fmt.Fprintf(w, "Usage: lufs [flags] file ...\n\n")
	fmt.Fprintf(w, "Measures integrated loudness, loudness range and true peak of audio files.\n\n")
	fmt.Fprintf(w, "Flags:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  lufs mix.wav\n")
	fmt.Fprintf(w, "  lufs -format json -lra legacy *.flac\n")
	fmt.Fprintf(w, "  lufs -jobs 8 -out reports/ -s3-bucket masters album/*.wav\n")
}

func newFlagSet(cfg *Config, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("lufs", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format: table or json")
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "number of files analyzed concurrently (1-64)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory for per-file JSON reports")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.StringVar(&cfg.LRA, "lra", cfg.LRA, "loudness range algorithm: r128 or legacy")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall time limit, 0 for none")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "upload reports to this S3 bucket")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3-compatible endpoint URL")
	fs.StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "S3 region (default auto)")
	fs.StringVar(&cfg.S3.Prefix, "s3-prefix", cfg.S3.Prefix, "key prefix for uploaded reports")

	return fs
}

// applyEnv overlays LUFS_* variables on cfg.
func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	str(&cfg.Format, "LUFS_FORMAT")
	str(&cfg.OutputDir, "LUFS_OUT")
	str(&cfg.LogLevel, "LUFS_LOG_LEVEL")
	str(&cfg.LogFormat, "LUFS_LOG_FORMAT")
	str(&cfg.LRA, "LUFS_LRA")
	str(&cfg.S3.Bucket, "LUFS_S3_BUCKET")
	str(&cfg.S3.Endpoint, "LUFS_S3_ENDPOINT")
	str(&cfg.S3.Region, "LUFS_S3_REGION", "AWS_REGION")
	str(&cfg.S3.Prefix, "LUFS_S3_PREFIX")
	str(&cfg.S3.AccessKeyID, "LUFS_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	str(&cfg.S3.SecretAccessKey, "LUFS_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")

	if v := getenv("LUFS_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: LUFS_JOBS: %w", err)
		}

		cfg.Jobs = n
	}

	if v := getenv("LUFS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: LUFS_TIMEOUT: %w", err)
		}

		cfg.Timeout = d
	}

	return nil
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}

		return name
	})
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldPath(e)+" "+formatValidationMessage(e))
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}

	return ns
}

func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_with":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("needs at least %s entries", e.Param())
		}

		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
