package blob

import (
	"context"
	"strings"
	"testing"
)

func TestOpenConfigSelectsDriver(t *testing.T) {
	ctx := context.Background()
	fsStore, err := OpenConfig(ctx, Config{FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	if fsStore.Driver() != DriverFilesystem {
		t.Fatalf("expected fs default, got %s", fsStore.Driver())
	}
	mem, err := OpenConfig(ctx, Config{Driver: DriverMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("memory: %v %v", mem, err)
	}
	if _, err := OpenConfig(ctx, Config{Driver: "tape"}); err == nil || !strings.Contains(err.Error(), "unknown blob driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestOpenReadsEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("IFCQA_BLOB_DRIVER", "fs")
	t.Setenv("IFCQA_BLOB_FS_ROOT", root)
	cfg := ConfigFromEnv()
	if cfg.Driver != DriverFilesystem || cfg.FSRoot != root {
		t.Fatalf("unexpected config %+v", cfg)
	}
	store, err := Open(context.Background())
	if err != nil || store.Driver() != DriverFilesystem {
		t.Fatalf("open: %v %v", store, err)
	}

	t.Setenv("IFCQA_BLOB_DRIVER", "s3")
	t.Setenv("IFCQA_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected s3 bucket error")
	}
	if NewMockS3ForTests().Driver() != DriverS3 {
		t.Fatalf("expected s3 mock driver")
	}
}
