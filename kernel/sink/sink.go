// Package sink provides destinations for materialized artifacts.
package sink

import (
	"path"
	"strings"

	"github.com/mamameal/docgenctl/kernel/codec"
	"github.com/mamameal/docgenctl/kernel/config"
	"github.com/pkg/errors"
)

// FromConfig builds the sink selected by cfg.Type.
func FromConfig(cfg config.SinkConfig) (codec.Sink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "dir":
		return NewDirSink(cfg.Dir), nil
	case "s3":
		return NewS3Sink(cfg.S3)
	case "sftp":
		return NewSFTPSink(cfg.SFTP)
	default:
		return nil, errors.Errorf("unknown sink type '%s'", cfg.Type)
	}
}

// safeName keeps only the base name of a server-suggested filename.
func safeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." || base == "" {
		return "artifact"
	}
	return base
}
