// Package provision makes sure the model artifact exists on local disk
// before anything tries to load it.
package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"heartcheck/monitoring"
)

const DefaultTimeout = 2 * time.Minute

var (
	// ErrProvision wraps every failure to produce a usable artifact.
	ErrProvision = errors.New("model provisioning failed")
	// ErrSourceUnavailable means the remote identifier no longer resolves to a file.
	ErrSourceUnavailable = errors.New("remote artifact unavailable")
)

// ProgressFunc receives the bytes written so far and the expected total,
// or -1 when the remote did not announce a length.
type ProgressFunc func(written, total int64)

type Fetcher interface {
	Fetch(ctx context.Context, sourceID string, dst io.Writer, progress ProgressFunc) (int64, error)
}

// ValidateFunc checks that the file at path deserializes into a usable model.
type ValidateFunc func(path string) error

type Record struct {
	SourceID  string
	Path      string
	Bytes     int64
	SHA256    string
	Duration  time.Duration
	FetchedAt time.Time
}

type Ledger interface {
	RecordFetch(ctx context.Context, rec Record) error
}

type Outcome struct {
	Path    string
	Fetched bool
	Record  Record
}

type Provisioner struct {
	Path     string
	SourceID string
	Fetcher  Fetcher
	Validate ValidateFunc
	Timeout  time.Duration
	Progress ProgressFunc
	Ledger   Ledger
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
}

// Ensure returns once a validated artifact sits at p.Path. An existing file is
// trusted as is and never refetched. A missing one is downloaded exactly once
// into a temporary sibling, validated, and renamed into place, so a failed
// fetch never leaves a partial artifact behind.
func (p *Provisioner) Ensure(ctx context.Context) (Outcome, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(p.Path); err == nil {
		logger.Info("model artifact present, skipping download", zap.String("path", p.Path))
		return Outcome{Path: p.Path}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Outcome{}, fmt.Errorf("%w: stat %s: %w", ErrProvision, p.Path, err)
	}
	if p.Fetcher == nil {
		return Outcome{}, fmt.Errorf("%w: %s is missing and no fetcher is configured", ErrProvision, p.Path)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("downloading model artifact",
		zap.String("source_id", p.SourceID),
		zap.String("path", p.Path),
		zap.Duration("timeout", timeout),
	)
	start := time.Now()
	rec, err := p.fetch(ctx)
	if err != nil {
		logger.Error("model download failed", zap.String("source_id", p.SourceID), zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %s: %w", ErrProvision, p.SourceID, err)
	}
	rec.Duration = time.Since(start)
	p.Metrics.ObserveFetch(start, rec.Bytes)

	logger.Info("model artifact ready",
		zap.String("path", rec.Path),
		zap.Int64("bytes", rec.Bytes),
		zap.String("sha256", rec.SHA256),
		zap.Duration("elapsed", rec.Duration),
	)
	if p.Ledger != nil {
		if err := p.Ledger.RecordFetch(ctx, rec); err != nil {
			logger.Warn("could not record artifact fetch", zap.Error(err))
		}
	}
	return Outcome{Path: p.Path, Fetched: true, Record: rec}, nil
}

func (p *Provisioner) fetch(ctx context.Context) (Record, error) {
	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Record{}, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p.Path)+".*.part")
	if err != nil {
		return Record{}, err
	}
	tmpPath := tmp.Name()

	hash := sha256.New()
	n, err := p.Fetcher.Fetch(ctx, p.SourceID, io.MultiWriter(tmp, hash), p.Progress)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err == nil && n == 0 {
		err = errors.New("remote returned an empty artifact")
	}
	if err == nil && p.Validate != nil {
		err = p.Validate(tmpPath)
	}
	if err == nil {
		err = os.Rename(tmpPath, p.Path)
	}
	if err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = multierror.Append(err, rmErr)
		}
		return Record{}, err
	}

	return Record{
		SourceID:  p.SourceID,
		Path:      p.Path,
		Bytes:     n,
		SHA256:    hex.EncodeToString(hash.Sum(nil)),
		FetchedAt: time.Now().UTC(),
	}, nil
}
