package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"disabled", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestNew_JSONComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "info", Format: "json"}, WithOutput(&buf))

	sub := log.WithComponent("tmdb")
	sub.Info().Msg("hello")

	entry := decodeLine(t, &buf)
	if entry["component"] != "tmdb" {
		t.Errorf("component = %v, want tmdb", entry["component"])
	}
	if entry["service"] != "cinematch" {
		t.Errorf("service = %v, want cinematch", entry["service"])
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
}

func TestNew_DeveloperModeLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "warn", Format: "json"}, WithOutput(&buf))
	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line written at warn level: %q", buf.String())
	}

	log = New(config.LoggingConfig{Level: "warn", Format: "json"}, WithOutput(&buf), WithDeveloperMode(true))
	log.Debug().Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Errorf("developer mode did not log debug: %q", buf.String())
	}
}

func TestNew_RedactsAPIKey(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "info", Format: "json"}, WithOutput(&buf))

	log.Warn().
		Str("url", "https://api.themoviedb.org/3/find/tt1?api_key=abc123&external_source=imdb_id").
		Msg("request failed")

	if bytes.Contains(buf.Bytes(), []byte("abc123")) {
		t.Fatalf("API key leaked: %q", buf.String())
	}
	entry := decodeLine(t, &buf)
	want := "https://api.themoviedb.org/3/find/tt1?api_key=REDACTED&external_source=imdb_id"
	if entry["url"] != want {
		t.Errorf("url = %v, want %s", entry["url"], want)
	}
}

func TestNew_FileRotation(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "info", Format: "json", Path: dir}, WithOutput(&buf))

	log.Info().Str("key", "api_key=secret").Msg("to file")
	if err := log.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cinematch.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !bytes.Contains(data, []byte("to file")) {
		t.Errorf("log file missing message: %q", data)
	}
	if bytes.Contains(data, []byte("secret")) {
		t.Errorf("log file holds an unmasked key: %q", data)
	}
}
