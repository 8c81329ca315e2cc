package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/cmd"
	"NYCU-SDC/formbricks-challenge/internal/config"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.6.1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var AppName = "no-app-name"

var Version = "no-version"

var BuildTime = "no-build-time"

var CommitHash = "no-commit-hash"

var Environment = "no-env"

func main() {
	AppName = os.Getenv("APP_NAME")
	if AppName == "" {
		AppName = "formbricks-challenge"
	}

	if BuildTime == "no-build-time" {
		now := time.Now()
		BuildTime = "not provided (now: " + now.Format(time.RFC3339) + ")"
	}

	Environment = os.Getenv("ENV")
	if Environment == "" {
		Environment = "no-env"
	}

	info := buildInfo{
		AppName:     AppName,
		Version:     Version,
		BuildTime:   BuildTime,
		CommitHash:  CommitHash,
		Environment: Environment,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logger *zap.Logger
	var otelShutdown func(context.Context) error
	setup := func(_ context.Context, path string) (*cmd.App, error) {
		cfg, cfgLog, err := config.Load(path)
		if err != nil {
			return nil, err
		}

		err = cfg.Validate()
		if err != nil {
			return nil, err
		}

		logger, err = initLogger(&cfg, info)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfgLog.FlushToZap(logger)

		otelShutdown, err = initOpenTelemetry(info, cfg.OtelCollectorUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}

		return &cmd.App{
			Logger:    logger,
			Config:    cfg,
			Validator: internal.NewValidator(),
		}, nil
	}

	err := cmd.NewRootCommand(setup).ExecuteContext(ctx)

	if otelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		shutdownErr := otelShutdown(shutdownCtx)
		cancel()
		if shutdownErr != nil && logger != nil {
			logger.Error("Failed to shutdown OpenTelemetry", zap.Error(shutdownErr))
		}
	}
	if logger != nil {
		_ = logger.Sync()
	}
	if err == nil {
		return
	}

	problem := describeFailure(err)
	_, _ = fmt.Fprint(os.Stderr, CommandFailed(problem.Title, problem.Action))
	os.Exit(1)
}

// buildInfo identifies this binary in logs and trace resources.
type buildInfo struct {
	AppName     string
	Version     string
	BuildTime   string
	CommitHash  string
	Environment string
}

func (b buildInfo) fields() []zap.Field {
	return []zap.Field{
		zap.String("app_name", b.AppName),
		zap.String("version", b.Version),
		zap.String("build_time", b.BuildTime),
		zap.String("commit_hash", b.CommitHash),
		zap.String("environment", b.Environment),
	}
}

func (b buildInfo) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.ServiceNameKey.String(b.AppName),
		semconv.ServiceVersionKey.String(b.Version),
		semconv.ServiceNamespaceKey.String("formbricks-challenge"),
		attribute.String("service.commit_hash", b.CommitHash),
		attribute.String("service.build_time", b.BuildTime),
		semconv.DeploymentEnvironmentKey.String(b.Environment),
	}
}

// describeFailure turns a command error into what the user sees on stderr.
// Errors without a known problem fall back to their message and a usage hint.
func describeFailure(err error) internal.Problem {
	problem := internal.ErrorHandler(err)
	if problem.IsZero() {
		return internal.Problem{Title: err.Error(), Action: "Run the command with --help for usage."}
	}

	problem.Title += "\n" + err.Error()
	return problem
}

// initLogger builds the debug or production logger from summer. Debug runs
// print the build once; production runs stamp it on every line.
func initLogger(cfg *config.Config, info buildInfo) (*zap.Logger, error) {
	if cfg.Debug {
		logger, err := logutil.ZapDevelopmentConfig().Build()
		if err != nil {
			return nil, err
		}
		logger.Info("Running in debug mode", info.fields()...)
		return logger, nil
	}

	logger, err := logutil.ZapProductionConfig().Build()
	if err != nil {
		return nil, err
	}
	return logger.With(info.fields()...), nil
}

// initOpenTelemetry installs a tracer provider for the command run. Spans are
// only exported when a collector is configured; otherwise they stay local.
func initOpenTelemetry(info buildInfo, collectorURL string) (func(context.Context) error, error) {
	ctx := context.Background()

	res, err := resource.New(ctx, resource.WithAttributes(info.attributes()...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	if collectorURL != "" {
		conn, err := initGrpcConn(collectorURL)
		if err != nil {
			return nil, err
		}

		traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		options = append(options, sdktrace.WithBatcher(traceExporter))
	}

	tracerProvider := sdktrace.NewTracerProvider(options...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider.Shutdown, nil
}

func initGrpcConn(target string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	return conn, nil
}

const failureBanner = `
-----------------------------------------
Command Failed
-----------------------------------------

# What's wrong?
%s

# How to fix it?
%s

`

func CommandFailed(title, action string) string {
	return fmt.Sprintf(failureBanner, title, action)
}
