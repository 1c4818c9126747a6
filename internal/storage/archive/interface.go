// Package archive stores exported render snapshots on a local directory or
// an S3-compatible bucket. The dashboard never reads them back.
package archive

import (
	"context"
	"fmt"
	"path"
	"time"
)

// Store is a flat key/value blob store.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Kinds of store.
const (
	KindLocal = "local"
	KindS3    = "s3"
)

// Config selects and configures a store. An empty Kind disables archiving.
type Config struct {
	Kind string
	Dir  string
	S3   S3Config
}

// Open returns the store described by cfg, or nil when archiving is disabled.
func Open(cfg Config) (Store, error) {
	switch cfg.Kind {
	case "":
		return nil, nil
	case KindLocal:
		fs, err := NewLocalFS(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case KindS3:
		s, err := NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown archive kind %q", cfg.Kind)
	}
}

// SnapshotKey names a render snapshot taken at t: snapshots are grouped by
// day, and the symbol, when set, is part of the name.
func SnapshotKey(t time.Time, symbol, format string) string {
	t = t.UTC()
	name := t.Format("150405")
	if symbol != "" {
		name += "-" + symbol
	}
	return path.Join("render", t.Format("2006-01-02"), name+"."+format)
}
