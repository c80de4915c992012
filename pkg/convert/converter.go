// Package convert implements the batch PNG-to-icon converter.
//
// This package drives the pkg/icon pipeline over a directory of source
// PNGs: list → (per file) decode → trim → pad → resize → encode → write.
// Files are processed sequentially and every per-file failure is isolated:
// it is logged, counted, and the batch moves on. Only a missing source
// directory fails a run.
//
// A conversion cache (pkg/cache) keyed by source content hash and output
// size lets repeat runs with --overwrite skip the pipeline for unchanged
// sources whose output is still present.
//
// # Usage
//
//	conv, err := convert.New(fileCache, convert.Options{
//	    Src:  "img",
//	    Dst:  "icons",
//	    Size: 256,
//	})
//	if err != nil {
//	    return err
//	}
//	summary, err := conv.Run(ctx)
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/icoforge/icoforge/pkg/cache"
	"github.com/icoforge/icoforge/pkg/errors"
	"github.com/icoforge/icoforge/pkg/icon"
	"github.com/icoforge/icoforge/pkg/observability"
)

// Status classifies the outcome of a single file conversion.
type Status string

const (
	// StatusConverted means the file went through the full pipeline.
	StatusConverted Status = "converted"

	// StatusCached means an up-to-date output already existed and the
	// cache proved the source unchanged, so the pipeline was skipped.
	StatusCached Status = "cached"

	// StatusSkipped means the file was deliberately not converted
	// (existing output without --overwrite, or a fully transparent image).
	StatusSkipped Status = "skipped"

	// StatusFailed means decoding or writing failed.
	StatusFailed Status = "failed"
)

// Options configures a Converter.
type Options struct {
	Src       string // source directory with PNGs
	Dst       string // destination directory for icons
	Size      int    // output dimension (square)
	Overwrite bool   // replace existing outputs

	// Runtime options
	Logger   *log.Logger      `json:"-"` // defaults to log.Default()
	OnResult func(FileResult) `json:"-"` // per-file progress callback (optional)
}

// FileResult is the outcome of converting a single source file.
type FileResult struct {
	Source  string        // source path
	Output  string        // destination path (empty when nothing was written)
	Status  Status        // outcome classification
	Err     error         // skip or failure reason, nil on success
	Elapsed time.Duration // time spent on this file
}

// Summary aggregates the results of a batch run.
type Summary struct {
	RunID     string        // unique id for this run, used in logs and hooks
	Converted int           // files that went through the pipeline
	Cached    int           // files skipped via the conversion cache
	Skipped   int           // deliberate skips (exists, fully transparent)
	Failed    int           // decode/write failures
	Files     []FileResult  // per-file outcomes in processing order
	Elapsed   time.Duration // total wall time
}

// Total returns the number of source files seen by the run.
func (s *Summary) Total() int {
	return len(s.Files)
}

// cacheRecord is the value stored under a conversion cache key.
type cacheRecord struct {
	OutputHash string    `json:"output_hash"`
	Size       int       `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// Converter runs batch conversions.
type Converter struct {
	opts   Options
	cache  cache.Cache
	logger *log.Logger
}

// New creates a Converter. The cache may be nil to disable caching.
func New(c cache.Cache, opts Options) (*Converter, error) {
	if opts.Src == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "source directory cannot be empty")
	}
	if opts.Dst == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "destination directory cannot be empty")
	}
	if opts.Size == 0 {
		opts.Size = icon.DefaultSize
	}
	if err := errors.ValidateSize(opts.Size); err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Converter{opts: opts, cache: c, logger: logger}, nil
}

// Sources lists the PNG files in the source directory, sorted by name.
// The extension match is case-insensitive. A missing or unreadable source
// directory is the one fatal setup error of a run.
func (c *Converter) Sources() ([]string, error) {
	entries, err := os.ReadDir(c.opts.Src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeSourceNotFound, "source directory %s does not exist", c.opts.Src)
		}
		return nil, errors.Wrap(errors.ErrCodeSourceNotFound, err, "read source directory %s", c.opts.Src)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			paths = append(paths, filepath.Join(c.opts.Src, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Run converts every PNG in the source directory sequentially.
// Per-file failures are recorded in the summary and never abort the run;
// the returned error is non-nil only for fatal setup problems or context
// cancellation.
func (c *Converter) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	paths, err := c.Sources()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.opts.Dst, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeWriteFailed, err, "create destination directory %s", c.opts.Dst)
	}

	summary := &Summary{RunID: uuid.NewString()}
	observability.Convert().OnRunStart(ctx, summary.RunID, len(paths))

	for _, path := range paths {
		select {
		case <-ctx.Done():
			summary.Elapsed = time.Since(start)
			return summary, ctx.Err()
		default:
		}

		res := c.File(ctx, summary.RunID, path)
		summary.Files = append(summary.Files, res)
		switch res.Status {
		case StatusConverted:
			summary.Converted++
		case StatusCached:
			summary.Cached++
		case StatusSkipped:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
		}
		if c.opts.OnResult != nil {
			c.opts.OnResult(res)
		}
	}

	summary.Elapsed = time.Since(start)
	observability.Convert().OnRunComplete(ctx, summary.RunID,
		summary.Converted, summary.Skipped+summary.Cached, summary.Failed, summary.Elapsed)
	return summary, nil
}

// File converts a single source file and writes the result to the
// destination directory. All outcomes, including failures, are returned
// as a FileResult; the caller decides whether any of them end the batch.
func (c *Converter) File(ctx context.Context, runID, srcPath string) FileResult {
	start := time.Now()
	observability.Convert().OnFileStart(ctx, runID, srcPath)

	res := c.file(ctx, srcPath)
	res.Elapsed = time.Since(start)

	observability.Convert().OnFileComplete(ctx, runID, srcPath, res.Elapsed, res.Err)
	c.logResult(res)
	return res
}

func (c *Converter) file(ctx context.Context, srcPath string) FileResult {
	res := FileResult{Source: srcPath}

	base := filepath.Base(srcPath)
	if err := errors.ValidateBasename(base); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	dstPath := filepath.Join(c.opts.Dst, base)

	// Existing output without --overwrite is a skip, decided before any
	// decoding so the output file is left byte-identical.
	if !c.opts.Overwrite {
		if _, err := os.Stat(dstPath); err == nil {
			res.Status = StatusSkipped
			res.Err = errors.New(errors.ErrCodeAlreadyExists,
				"%s exists, use --overwrite to replace", dstPath)
			return res
		}
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		res.Status = StatusFailed
		res.Err = errors.Wrap(errors.ErrCodeDecodeFailed, err, "read %s", srcPath)
		return res
	}

	// Cache fast path: a hit proves this exact source and size was
	// converted before. Only valid while the output is still on disk.
	key := cache.IconKey(cache.Hash(data), cache.IconKeyOpts{Size: c.opts.Size})
	if c.cacheHit(ctx, key, dstPath) {
		res.Output = dstPath
		res.Status = StatusCached
		return res
	}

	out, err := Decode(data, c.opts.Size)
	if err != nil {
		if errors.IsSkip(err) {
			res.Status = StatusSkipped
		} else {
			res.Status = StatusFailed
		}
		res.Err = err
		return res
	}

	encoded, err := EncodePNG(out)
	if err != nil {
		res.Status = StatusFailed
		res.Err = errors.Wrap(errors.ErrCodeInternal, err, "encode %s", base)
		return res
	}

	if err := os.WriteFile(dstPath, encoded, 0644); err != nil {
		res.Status = StatusFailed
		res.Err = errors.Wrap(errors.ErrCodeWriteFailed, err, "write %s", dstPath)
		return res
	}

	c.cacheStore(ctx, key, encoded)

	res.Output = dstPath
	res.Status = StatusConverted
	return res
}

// cacheHit reports whether key has a valid conversion record and the
// output file on disk still matches the recorded hash. Cache errors
// degrade to a miss.
func (c *Converter) cacheHit(ctx context.Context, key, dstPath string) bool {
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Debug("cache get failed", "err", err)
		return false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "icon")
		return false
	}

	var rec cacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		_ = c.cache.Delete(ctx, key)
		return false
	}
	out, err := os.ReadFile(dstPath)
	if err != nil {
		// Output was removed since the record was written.
		return false
	}
	if cache.Hash(out) != rec.OutputHash {
		// Output was modified since the record was written.
		return false
	}

	observability.Cache().OnCacheHit(ctx, "icon")
	return true
}

// cacheStore records a completed conversion. Failures are logged at debug
// level and never affect the conversion result.
func (c *Converter) cacheStore(ctx context.Context, key string, encoded []byte) {
	rec := cacheRecord{
		OutputHash: cache.Hash(encoded),
		Size:       c.opts.Size,
		CreatedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		c.logger.Debug("cache set failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "icon", len(data))
}

func (c *Converter) logResult(res FileResult) {
	name := filepath.Base(res.Source)
	switch res.Status {
	case StatusConverted:
		c.logger.Info("converted", "file", name, "size", c.opts.Size,
			"took", res.Elapsed.Round(time.Millisecond))
	case StatusCached:
		c.logger.Debug("unchanged, cache hit", "file", name)
	case StatusSkipped:
		c.logger.Warn(errors.UserMessage(res.Err), "file", name)
	case StatusFailed:
		c.logger.Error(errors.UserMessage(res.Err), "file", name)
	}
}

// Decode decodes source bytes and normalizes them to a size×size icon.
// It returns a structured error: DECODE_FAILED for corrupt or non-PNG
// data, FULLY_TRANSPARENT when the image has no opaque pixel.
func Decode(data []byte, size int) (*image.NRGBA, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode image")
	}

	out, ok := icon.Normalize(img, size)
	if !ok {
		return nil, errors.New(errors.ErrCodeFullyTransparent, "image is fully transparent")
	}
	return out, nil
}

// EncodePNG encodes an image as PNG with the alpha channel preserved.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
