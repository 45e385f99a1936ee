package blob

import (
	"context"
	"fmt"
	"os"
)

// Config selects a backend explicitly. Empty fields fall back to the
// environment.
type Config struct {
	Driver Driver
	FSRoot string
}

// ConfigFromEnv reads the backend selection from the environment.
//
//	IFCQA_BLOB_DRIVER: fs|s3|memory (default fs)
//	IFCQA_BLOB_FS_ROOT: directory root when driver=fs (default ./ifcqa-artifacts)
//	(S3 specific variables documented in internal/infra/blob/s3)
func ConfigFromEnv() Config {
	return Config{
		Driver: Driver(os.Getenv("IFCQA_BLOB_DRIVER")),
		FSRoot: os.Getenv("IFCQA_BLOB_FS_ROOT"),
	}
}

// Open selects a Store implementation using environment variables.
func Open(ctx context.Context) (Store, error) {
	return OpenConfig(ctx, ConfigFromEnv())
}

// OpenConfig selects a Store implementation from cfg.
func OpenConfig(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
