package stack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/config"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/jackc/pgx/v5"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	healthPollInterval = 5 * time.Second
	healthCheckTimeout = 2 * time.Second
)

// Info describes a running local instance.
type Info struct {
	WebappURL  string
	EnvFile    string
	Containers []string
}

type Stack struct {
	logger *zap.Logger
	tracer trace.Tracer
	cfg    config.StackConfig
	pool   *dockertest.Pool

	httpClient   *http.Client
	pollInterval time.Duration
}

// New connects to the local docker daemon.
func New(logger *zap.Logger, cfg config.StackConfig) (*Stack, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrDockerUnavailable, err)
	}

	err = pool.Client.Ping()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrDockerUnavailable, err)
	}
	pool.MaxWait = cfg.HealthTimeout

	return &Stack{
		logger:       logger,
		tracer:       otel.Tracer("stack/stack"),
		cfg:          cfg,
		pool:         pool,
		httpClient:   &http.Client{Timeout: healthCheckTimeout},
		pollInterval: healthPollInterval,
	}, nil
}

// Up replaces any previous instance of the project with a fresh postgres and
// Formbricks pair, writes the env file and waits for the health endpoint.
func (s *Stack) Up(ctx context.Context) (Info, error) {
	traceCtx, span := s.tracer.Start(ctx, "Up")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	logger.Info("Cleaning up any existing containers", zap.String("project", s.cfg.Project))
	err := s.Down(traceCtx)
	if err != nil {
		span.RecordError(err)
		return Info{}, err
	}

	secrets, err := NewSecrets()
	if err != nil {
		span.RecordError(err)
		return Info{}, err
	}

	network, err := s.pool.CreateNetwork(s.cfg.Project)
	if err != nil {
		span.RecordError(err)
		return Info{}, fmt.Errorf("create network %s: %w", s.cfg.Project, err)
	}

	logger.Info("Starting postgres", zap.String("image", s.cfg.PostgresImage))
	postgres, err := s.pool.RunWithOptions(PostgresOptions(s.cfg, network), restartAlways)
	if err != nil {
		span.RecordError(err)
		return Info{}, fmt.Errorf("start postgres: %w", err)
	}

	dsn := HostDatabaseURL(postgres.GetPort(postgresPort))
	err = s.waitForPostgres(traceCtx, dsn)
	if err != nil {
		span.RecordError(err)
		return Info{}, err
	}
	logger.Info("Postgres is ready")

	if ctx.Err() != nil {
		return Info{}, ctx.Err()
	}

	logger.Info("Starting formbricks", zap.String("image", s.cfg.FormbricksImage))
	_, err = s.pool.RunWithOptions(FormbricksOptions(s.cfg, network, secrets), restartAlways)
	if err != nil {
		span.RecordError(err)
		return Info{}, fmt.Errorf("start formbricks: %w", err)
	}

	err = WriteEnvFile(s.cfg.EnvFile, HostEnvironment(s.cfg, secrets, dsn))
	if err != nil {
		span.RecordError(err)
		return Info{}, err
	}
	logger.Info("Wrote env file", zap.String("path", s.cfg.EnvFile))

	err = WaitHealthy(traceCtx, logger, s.httpClient, s.cfg.WebappURL()+"/api/health", s.cfg.HealthTimeout, s.pollInterval)
	if err != nil {
		span.RecordError(err)
		return Info{}, err
	}

	return Info{
		WebappURL:  s.cfg.WebappURL(),
		EnvFile:    s.cfg.EnvFile,
		Containers: []string{PostgresName(s.cfg), FormbricksName(s.cfg)},
	}, nil
}

// Down removes the project's containers, volumes and network. Missing
// resources are not an error.
func (s *Stack) Down(ctx context.Context) error {
	traceCtx, span := s.tracer.Start(ctx, "Down")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	for _, name := range []string{FormbricksName(s.cfg), PostgresName(s.cfg)} {
		err := s.pool.RemoveContainerByName(name)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("remove container %s: %w", name, err)
		}
		logger.Debug("Removed container", zap.String("name", name))
	}

	for _, name := range VolumeNames(s.cfg) {
		err := s.pool.Client.RemoveVolumeWithOptions(docker.RemoveVolumeOptions{Name: name, Force: true})
		if err != nil && !errors.Is(err, docker.ErrNoSuchVolume) {
			span.RecordError(err)
			return fmt.Errorf("remove volume %s: %w", name, err)
		}
	}

	networks, err := s.pool.NetworksByName(s.cfg.Project)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("list networks: %w", err)
	}
	for i := range networks {
		err = networks[i].Close()
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("remove network %s: %w", s.cfg.Project, err)
		}
	}

	logger.Info("Stack removed", zap.String("project", s.cfg.Project))
	return nil
}

func (s *Stack) waitForPostgres(ctx context.Context, dsn string) error {
	err := s.pool.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()

		conn, err := pgx.Connect(pingCtx, dsn)
		if err != nil {
			return err
		}
		defer func() {
			_ = conn.Close(context.Background())
		}()

		return conn.Ping(pingCtx)
	})
	if err != nil {
		return fmt.Errorf("%w: postgres: %w", internal.ErrStackNotReady, err)
	}
	return nil
}

// WaitHealthy polls url until it answers 200 or timeout elapses.
func WaitHealthy(ctx context.Context, logger *zap.Logger, client *http.Client, url string, timeout, interval time.Duration) error {
	start := time.Now()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if respondsHealthy(ctx, client, url) {
			logger.Info("Formbricks is ready", zap.Duration("elapsed", time.Since(start).Round(time.Second)))
			return nil
		}
		logger.Info("Waiting for Formbricks", zap.Duration("elapsed", time.Since(start).Round(time.Second)))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: no healthy answer from %s after %s", internal.ErrStackNotReady, url, timeout)
		case <-ticker.C:
		}
	}
}

func respondsHealthy(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	res, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = res.Body.Close()

	return res.StatusCode == http.StatusOK
}

func restartAlways(hc *docker.HostConfig) {
	hc.AutoRemove = false
	hc.RestartPolicy = docker.RestartPolicy{Name: "always"}
}
