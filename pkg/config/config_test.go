package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/intentgraph/pkg/core/layout"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestDefaultMatchesEngineDefaults(t *testing.T) {
	cfg := Default()
	if got, want := cfg.Layout.Options(), layout.DefaultOptions(); got != want {
		t.Errorf("Layout.Options() = %+v, want %+v", got, want)
	}
	if got := cfg.Drag.Options(); got.Buffer != 15 || got.MinDisplacement != 30 || got.DragOpacity != 0.2 {
		t.Errorf("Drag.Options() = %+v", got)
	}
	if cfg.Extract.Enabled() {
		t.Error("extraction enabled by default")
	}
}

func TestParse(t *testing.T) {
	t.Setenv("IG_TEST_NS", "alice")
	cfg, err := Parse([]byte(`
[log]
level = "debug"

[layout]
orientation = "columnar"
height = 800

[store]
backend = "sqlite"
namespace = "${IG_TEST_NS}"

[store.sqlite]
path = "/tmp/ig.db"

[extract]
url = "https://extractor.local/extract"
timeout = "20s"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Log.ParsedLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", cfg.Log.ParsedLevel())
	}
	if o := cfg.Layout.Options(); o.Orientation != layout.Columnar || o.Viewport.Height != 800 {
		t.Errorf("layout = %+v", o)
	}
	if cfg.Layout.HighSpacing != layout.DefaultHighSpacing {
		t.Errorf("HighSpacing = %v, want default %v", cfg.Layout.HighSpacing, layout.DefaultHighSpacing)
	}
	if cfg.Store.Namespace != "alice" {
		t.Errorf("Namespace = %q, want expanded %q", cfg.Store.Namespace, "alice")
	}
	if cfg.Extract.Timeout != 20*time.Second || !cfg.Extract.Enabled() {
		t.Errorf("extract = %+v", cfg.Extract)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"bad level", "[log]\nlevel = \"loud\"", "level"},
		{"bad orientation", "[layout]\norientation = \"diagonal\"", "orientation"},
		{"opacity above one", "[drag]\nopacity = 1.5", "opacity"},
		{"no live drags", "[drag]\nmax_live = 0", "maxlive"},
		{"unknown backend", "[store]\nbackend = \"etcd\"", "backend"},
		{"redis without addr", "[store]\nbackend = \"redis\"\n[store.redis]\naddr = \"\"", "redis.addr"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", "mongo.uri"},
		{"ftp extractor", "[extract]\nurl = \"ftp://x\"", "http"},
		{"not toml", "[log", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if !strings.Contains(strings.ToLower(err.Error()), tt.want) {
				t.Errorf("Parse() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil || cfg.Store.Backend != BackendMemory {
		t.Errorf("LoadOrDefault(missing) = %+v, %v", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	if got, want := DataDir(), filepath.Join("/xdg/data", AppName); got != want {
		t.Errorf("DataDir() = %q, want %q", got, want)
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	if got, want := DefaultPath(), filepath.Join("/xdg/config", AppName, "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
