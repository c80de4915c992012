package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/icoforge/icoforge/pkg/cache"
	"github.com/icoforge/icoforge/pkg/config"
	"github.com/icoforge/icoforge/pkg/convert"
)

func newTestCLI() *CLI {
	return New(io.Discard, log.InfoLevel)
}

func TestRootCommand(t *testing.T) {
	root := newTestCLI().RootCommand()

	if root.Use != "icoforge" {
		t.Errorf("root.Use = %q, want %q", root.Use, "icoforge")
	}

	want := map[string]bool{
		"watch":      false,
		"serve":      false,
		"cache":      false,
		"completion": false,
	}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandFlagDefaults(t *testing.T) {
	root := newTestCLI().RootCommand()

	tests := []struct {
		flag string
		want string
	}{
		{"src", "img"},
		{"dst", "icons"},
		{"size", "256"},
		{"overwrite", "false"},
		{"no-cache", "false"},
	}

	pf := root.PersistentFlags()
	for _, tt := range tests {
		f := pf.Lookup(tt.flag)
		if f == nil {
			t.Errorf("flag --%s not registered", tt.flag)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("flag --%s default = %q, want %q", tt.flag, f.DefValue, tt.want)
		}
	}

	if root.Flags().Lookup("interactive") == nil {
		t.Error("flag --interactive not registered on the root command")
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icoforge.toml")
	data := "src = \"sprites\"\nsize = 128\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestCLI()
	root := c.RootCommand()

	if err := root.ParseFlags([]string{"--size", "64"}); err != nil {
		t.Fatal(err)
	}
	flags := rootFlags{configPath: path, size: 64}

	cfg, err := c.resolveConfig(root, flags)
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}

	if cfg.Src != "sprites" {
		t.Errorf("cfg.Src = %q, want file value %q", cfg.Src, "sprites")
	}
	if cfg.Size != 64 {
		t.Errorf("cfg.Size = %d, want flag value 64", cfg.Size)
	}
	if cfg.Dst != "icons" {
		t.Errorf("cfg.Dst = %q, want default %q", cfg.Dst, "icons")
	}
}

func TestResolveConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icoforge.toml")
	if err := os.WriteFile(path, []byte("size = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestCLI()
	root := c.RootCommand()

	_, err := c.resolveConfig(root, rootFlags{configPath: path})
	if err == nil {
		t.Error("resolveConfig() should reject a negative size")
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := newTestCLI()
	cfg := config.Default()

	got := c.newCache(context.Background(), cfg, true)
	if _, ok := got.(*cache.NullCache); !ok {
		t.Errorf("newCache with noCache = %T, want *cache.NullCache", got)
	}
}

func TestNewCacheBackendNone(t *testing.T) {
	c := newTestCLI()
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendNone

	got := c.newCache(context.Background(), cfg, false)
	if _, ok := got.(*cache.NullCache); !ok {
		t.Errorf("newCache with backend none = %T, want *cache.NullCache", got)
	}
}

func TestNewCacheFile(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := newTestCLI()
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendFile

	got := c.newCache(context.Background(), cfg, false)
	if _, ok := got.(*cache.FileCache); !ok {
		t.Errorf("newCache with backend file = %T, want *cache.FileCache", got)
	}
}

// sourcePNG writes a small opaque PNG named a.png into a fresh temp
// directory and returns that directory.
func sourcePNG(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return src
}

func TestRunConvertPlainUsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), logger)

	c := newTestCLI()
	opts := convert.Options{Src: sourcePNG(t), Dst: t.TempDir(), Size: 64, Logger: logger}

	summary, err := c.runConvertPlain(ctx, cache.NewNullCache(), opts, false)
	if err != nil {
		t.Fatalf("runConvertPlain error: %v", err)
	}
	if summary.Converted != 1 {
		t.Fatalf("summary = %+v, want 1 converted", summary)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Processed 1 images")) {
		t.Errorf("context logger saw no completion line, got:\n%s", buf.String())
	}
}

func TestRunConvertInteractiveCancelled(t *testing.T) {
	src := sourcePNG(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCLI()
	opts := convert.Options{Src: src, Dst: t.TempDir(), Size: 64}

	// Must return promptly with the context error and leave no batch
	// goroutine behind; a hang here means the drain is broken.
	done := make(chan error, 1)
	go func() {
		_, err := c.runConvertInteractive(ctx, cache.NewNullCache(), opts)
		done <- err
	}()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("runConvertInteractive error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runConvertInteractive did not return after cancellation")
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error = %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "icoforge") {
		t.Errorf("cacheDir() = %q, want XDG path", dir)
	}
}
