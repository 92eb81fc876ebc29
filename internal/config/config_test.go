package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
)

func TestDefaultDir(t *testing.T) {
	tests := []struct {
		goos, username, home, want string
	}{
		{"linux", "ada", "/home/ada", "/home/ada/.tdr"},
		{"darwin", "ada", "/Users/ada", "/home/ada/.tdr"},
		{"freebsd", "bob", "", "/home/bob/.tdr"},
		{"windows", `CORP\ada`, `C:\Users\ada`, `C:\Users\ada\AppData\Local\tdr`},
		{"windows", "ada", `C:\Users\ada\`, `C:\Users\ada\AppData\Local\tdr`},
	}
	for _, tt := range tests {
		if got := DefaultDir(tt.goos, tt.username, tt.home); got != tt.want {
			t.Errorf("DefaultDir(%q, %q, %q) = %q, want %q", tt.goos, tt.username, tt.home, got, tt.want)
		}
	}
}

func TestResolveDirPrefersFlag(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveDir(dir)
	if err != nil {
		t.Fatalf("ResolveDir: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %q, got %q", dir, got)
	}
}

func TestResolveDirDefaultsToUserDir(t *testing.T) {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		t.Skipf("no current user: %v", err)
	}
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "windows" && home == "" {
		t.Skip("no home directory")
	}
	want := DefaultDir(runtime.GOOS, u.Username, home)
	for _, flagValue := range []string{"", "   "} {
		got, err := ResolveDir(flagValue)
		if err != nil {
			t.Fatalf("ResolveDir(%q): %v", flagValue, err)
		}
		if got != want {
			t.Fatalf("ResolveDir(%q) = %q, want %q", flagValue, got, want)
		}
	}
	if runtime.GOOS != "windows" && want != "/home/"+u.Username+"/.tdr" {
		t.Fatalf("unexpected default dir %q", want)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dir != dir || cfg.LogLevel != DefaultLogLevel || cfg.Indent || cfg.Source != "" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if cfg.Level != log.WarnLevel {
		t.Fatalf("expected warn level, got %v", cfg.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, YAMLFile), "log_level: debug\nindent: true\n")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Level != log.DebugLevel || !cfg.Indent || cfg.Source != filepath.Join(dir, YAMLFile) {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, TOMLFile), "log_level = \"info\"\nindent = true\n")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.Level != log.InfoLevel || !cfg.Indent || cfg.Source != filepath.Join(dir, TOMLFile) {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestLoadYAMLWinsOverTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, YAMLFile), "log_level: error\n")
	writeFile(t, filepath.Join(dir, TOMLFile), "log_level = \"info\"\n")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected yaml settings, got %#v", cfg)
	}
}

func TestLoadRejectsBadSettings(t *testing.T) {
	tests := map[string][2]string{
		"bad yaml":      {YAMLFile, "log_level: [\n"},
		"bad toml":      {TOMLFile, "log_level = \n"},
		"unknown level": {YAMLFile, "log_level: chatty\n"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt[0]), tt[1])
			if _, err := Load(dir); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
