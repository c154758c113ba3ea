package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/config"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/dataprocessing"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/exporter"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/files"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/infrastructure"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/operations"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/validation"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailed   = 1
	exitUsage    = 2
	shutdownWait = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath  string
	inputFile   string
	outputDir   string
	formats     string
	partitions  int
	standardize bool
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("bankprep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (defaults to $"+config.ConfigFileEnv+", bankprep.yaml or configs/bankprep.yaml)")
	fs.StringVar(&opts.inputFile, "in", "", "customer workbook (.xlsx), or a directory to use its newest workbook")
	fs.StringVar(&opts.outputDir, "out", "", "directory that receives one sub-directory per run")
	fs.StringVar(&opts.formats, "formats", "", "comma-separated export formats: csv, xlsx, json, arrow")
	fs.IntVar(&opts.partitions, "partitions", 0, "repair the column in this many concurrent partitions")
	fs.BoolVar(&opts.standardize, "standardize", false, "standardize Yeo-Johnson output to zero mean and unit variance")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// overrides applies the flags that were set on top of the loaded config.
func (o *options) overrides() config.Override {
	return func(cfg *config.Config) {
		if o.inputFile != "" {
			cfg.Paths.InputFile = o.inputFile
		}
		if o.outputDir != "" {
			cfg.Paths.OutputDir = o.outputDir
		}
		if o.formats != "" {
			var formats []string
			for _, f := range strings.Split(o.formats, ",") {
				if f = strings.TrimSpace(f); f != "" {
					formats = append(formats, strings.ToLower(f))
				}
			}
			cfg.Export.Formats = formats
		}
		if o.partitions != 0 {
			cfg.Pipeline.Partitions = o.partitions
		}
		if o.standardize {
			cfg.Pipeline.Standardize = true
		}
	}
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath, opts.overrides())
	}
	return config.Load(opts.overrides())
}

// pipelineConfig maps the file configuration onto the stage configuration.
func pipelineConfig(cfg config.PipelineConfig) *operations.Config {
	out := operations.NewConfig()
	out.DropColumns = append([]string(nil), cfg.DropColumns...)
	out.RepairColumn = cfg.RepairColumn
	out.Partitions = cfg.Partitions
	out.LogColumns = append([]string(nil), cfg.LogColumns...)
	out.PowerColumns = append([]string(nil), cfg.PowerColumns...)
	out.Power.Standardize = cfg.Standardize
	out.Power.LambdaMin = cfg.LambdaMin
	out.Power.LambdaMax = cfg.LambdaMax
	out.OutlierK = cfg.OutlierK
	return out
}

func csvDialect(cfg config.ExportConfig) exporter.CSVDialect {
	d := exporter.CSVDialect{Comma: ',', BOM: cfg.CSVBOM}
	if r := []rune(cfg.CSVDelimiter); len(r) == 1 {
		d.Comma = r[0]
	}
	return d
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, contracts.Build())
		return exitOK
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitUsage
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return exitUsage
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureTraceID(ctx)
	logger = infrastructure.LoggerWithContext(ctx)

	providers, closeTelemetry, err := initTelemetry(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitUsage
	}
	defer closeTelemetry()

	logger.InfoContext(ctx, "Starting bank customer data preparation",
		slog.String("version", contracts.Version),
		slog.String("commit", contracts.Build().Commit),
		slog.String("input_file", cfg.Paths.InputFile),
		slog.String("output_dir", cfg.Paths.OutputDir),
		slog.Any("formats", cfg.Export.Formats))

	summaryPath, runErr := execute(ctx, cfg, providers, logger)

	if err := writeMetrics(cfg.Telemetry, providers); err != nil {
		logger.WarnContext(ctx, "Failed to write metrics", slog.String("error", err.Error()))
	}

	if summaryPath != "" {
		fmt.Fprintln(stdout, summaryPath)
	}
	if runErr != nil {
		logger.ErrorContext(ctx, "Run failed",
			slog.String("error", runErr.Error()),
			slog.String("error_type", infrastructure.ErrorType(runErr)))
		fmt.Fprintf(stderr, "bankprep: %v\n", runErr)
		return exitFailed
	}
	logger.InfoContext(ctx, "Run completed", slog.String("summary", summaryPath))
	return exitOK
}

// execute runs the pipeline and exports whatever it produced. It returns
// the run summary path when a run directory was written.
func execute(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger) (string, error) {
	inputFile, err := files.NewDiscovery("").ResolveInput(cfg.Paths.InputFile)
	if err != nil {
		return "", err
	}

	fileValidator := validation.NewFileValidator(logger)
	if err := fileValidator.ValidateInputFile(inputFile); err != nil {
		return "", err
	}
	if err := fileValidator.ValidateOutputDirectory(cfg.Paths.OutputDir); err != nil {
		return "", err
	}

	input, err := dataprocessing.ParseFile(inputFile)
	if err != nil {
		return "", err
	}
	logger.InfoContext(ctx, "Workbook loaded",
		slog.String("file", inputFile),
		slog.Int("rows", input.NumRows()),
		slog.Int("columns", input.NumColumns()))

	opCfg := pipelineConfig(cfg.Pipeline)
	if err := opCfg.Validate(); err != nil {
		return "", err
	}

	tracer, err := operations.NewPipelineTracer(providers)
	if err != nil {
		return "", err
	}
	registry, err := operations.NewPipelineRegistry(opCfg, tracer, logger)
	if err != nil {
		return "", err
	}
	manager := operations.NewManager(registry, tracer, logger)

	result, runErr := manager.Run(ctx, input)
	if result == nil {
		return "", runErr
	}

	paths, err := cfg.Paths.ResolveOutputPaths(result.RunID)
	if err != nil {
		return "", errors.Join(runErr, err)
	}
	exp, err := exporter.New(paths, cfg.Export.Formats, logger,
		exporter.WithCSVDialect(csvDialect(cfg.Export)))
	if err != nil {
		return "", errors.Join(runErr, err)
	}
	// Artifacts of a failed run are still exported; the summary names the
	// stage that stopped it.
	if _, err := exp.Export(ctx, result); err != nil {
		return "", errors.Join(runErr, err)
	}
	summaryPath, err := exp.WriteSummary(result.Summary(inputFile, runErr))
	if err != nil {
		return "", errors.Join(runErr, err)
	}
	return summaryPath, runErr
}

// initTelemetry starts the configured exporters. The returned func flushes
// and closes them.
func initTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*infrastructure.OTelProviders, func(), error) {
	otelCfg := infrastructure.OTelConfigFrom(cfg)

	var traceFile *os.File
	if cfg.TraceExporter == "stdout" && cfg.TraceFile != "" {
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		traceFile = f
		otelCfg.TraceWriter = f
	}

	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		if traceFile != nil {
			traceFile.Close()
		}
		return nil, nil, err
	}

	return providers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
		if traceFile != nil {
			traceFile.Close()
		}
	}, nil
}

// writeMetrics dumps the Prometheus exposition of the run to a file; the
// tool never opens a listener.
func writeMetrics(cfg config.TelemetryConfig, providers *infrastructure.OTelProviders) error {
	if cfg.MetricExporter != "prometheus" || cfg.MetricsFile == "" {
		return nil
	}
	f, err := os.Create(cfg.MetricsFile)
	if err != nil {
		return err
	}
	if err := providers.WriteMetrics(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
