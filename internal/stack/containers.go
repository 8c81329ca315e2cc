package stack

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"NYCU-SDC/formbricks-challenge/internal/config"

	"github.com/joho/godotenv"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	postgresPort     = "5432/tcp"
	formbricksPort   = "3000/tcp"
	postgresUser     = "postgres"
	postgresPassword = "postgres"
	postgresDatabase = "formbricks"
)

// Secrets are generated once per Up and shared by the container and the env file.
type Secrets struct {
	NextAuthSecret string
	EncryptionKey  string
	CronSecret     string
}

func NewSecrets() (Secrets, error) {
	values := make([]string, 3)
	for i := range values {
		buf := make([]byte, 32)
		_, err := rand.Read(buf)
		if err != nil {
			return Secrets{}, fmt.Errorf("generate secret: %w", err)
		}
		values[i] = hex.EncodeToString(buf)
	}

	return Secrets{
		NextAuthSecret: values[0],
		EncryptionKey:  values[1],
		CronSecret:     values[2],
	}, nil
}

func PostgresName(cfg config.StackConfig) string {
	return cfg.Project + "-postgres"
}

func FormbricksName(cfg config.StackConfig) string {
	return cfg.Project + "-formbricks"
}

func VolumeNames(cfg config.StackConfig) []string {
	return []string{cfg.Project + "-postgres-data", cfg.Project + "-uploads"}
}

// ContainerDatabaseURL is the address Formbricks uses inside the project network.
func ContainerDatabaseURL(cfg config.StackConfig) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:5432/%s?schema=public", postgresUser, postgresPassword, PostgresName(cfg), postgresDatabase)
}

// HostDatabaseURL is the address of the published postgres port on this host.
func HostDatabaseURL(hostPort string) string {
	return fmt.Sprintf("postgresql://%s:%s@localhost:%s/%s?schema=public", postgresUser, postgresPassword, hostPort, postgresDatabase)
}

func PostgresOptions(cfg config.StackConfig, network *dockertest.Network) *dockertest.RunOptions {
	repository, tag := splitImage(cfg.PostgresImage)
	return &dockertest.RunOptions{
		Name:       PostgresName(cfg),
		Repository: repository,
		Tag:        tag,
		Env: []string{
			"POSTGRES_USER=" + postgresUser,
			"POSTGRES_PASSWORD=" + postgresPassword,
			"POSTGRES_DB=" + postgresDatabase,
		},
		Mounts:       []string{VolumeNames(cfg)[0] + ":/var/lib/postgresql/data"},
		Networks:     networks(network),
		ExposedPorts: []string{postgresPort},
		PortBindings: map[docker.Port][]docker.PortBinding{
			postgresPort: {{HostIP: "0.0.0.0", HostPort: "5432"}},
		},
	}
}

func FormbricksOptions(cfg config.StackConfig, network *dockertest.Network, secrets Secrets) *dockertest.RunOptions {
	repository, tag := splitImage(cfg.FormbricksImage)
	return &dockertest.RunOptions{
		Name:         FormbricksName(cfg),
		Repository:   repository,
		Tag:          tag,
		Env:          envList(FormbricksEnvironment(cfg, secrets)),
		Mounts:       []string{VolumeNames(cfg)[1] + ":/home/nextjs/apps/web/uploads/"},
		Networks:     networks(network),
		ExposedPorts: []string{formbricksPort},
		PortBindings: map[docker.Port][]docker.PortBinding{
			formbricksPort: {{HostIP: "0.0.0.0", HostPort: fmt.Sprint(cfg.Port)}},
		},
	}
}

// FormbricksEnvironment is the container environment of the Formbricks service.
func FormbricksEnvironment(cfg config.StackConfig, secrets Secrets) map[string]string {
	webapp := cfg.WebappURL()
	return map[string]string{
		"DATABASE_URL":           ContainerDatabaseURL(cfg),
		"NEXTAUTH_SECRET":        secrets.NextAuthSecret,
		"NEXTAUTH_URL":           webapp,
		"ENCRYPTION_KEY":         secrets.EncryptionKey,
		"CRON_SECRET":            secrets.CronSecret,
		"WEBAPP_URL":             webapp,
		"NEXT_PUBLIC_WEBAPP_URL": webapp,
		"NODE_ENV":               "production",
	}
}

// HostEnvironment is written to the env file for tools running on the host.
func HostEnvironment(cfg config.StackConfig, secrets Secrets, databaseURL string) map[string]string {
	webapp := cfg.WebappURL()
	return map[string]string{
		"DATABASE_URL":           databaseURL,
		"NEXTAUTH_SECRET":        secrets.NextAuthSecret,
		"NEXTAUTH_URL":           webapp,
		"ENCRYPTION_KEY":         secrets.EncryptionKey,
		"WEBAPP_URL":             webapp,
		"NEXT_PUBLIC_WEBAPP_URL": webapp,
	}
}

func WriteEnvFile(path string, env map[string]string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}

	err := godotenv.Write(env, path)
	if err != nil {
		return fmt.Errorf("write env file %s: %w", path, err)
	}
	return nil
}

func envList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}

func networks(network *dockertest.Network) []*dockertest.Network {
	if network == nil {
		return nil
	}
	return []*dockertest.Network{network}
}

// splitImage separates "repo:tag"; a missing tag means latest.
func splitImage(image string) (string, string) {
	slash := strings.LastIndex(image, "/")
	colon := strings.LastIndex(image, ":")
	if colon <= slash {
		return image, "latest"
	}
	return image[:colon], image[colon+1:]
}
