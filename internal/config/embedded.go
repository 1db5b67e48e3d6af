package config

// EmbeddedTMDBKey is injected at build time via ldflags and serves as the
// default API key. Environment variables and the config file override it.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/cinematch/cinematch/internal/config.EmbeddedTMDBKey=xxx'" ./cmd/cinematch
var EmbeddedTMDBKey string
