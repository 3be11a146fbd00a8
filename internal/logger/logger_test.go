package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"newslens/internal/config"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.LogConfig
		want zapcore.Level
	}{
		{"console debug", config.LogConfig{Level: "debug", Encoding: "console"}, zapcore.DebugLevel},
		{"json warn", config.LogConfig{Level: "WARN", Encoding: "json"}, zapcore.WarnLevel},
		{"unknown level falls back to info", config.LogConfig{Level: "chatty", Encoding: "json"}, zapcore.InfoLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New(tc.cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := log.Level(); got != tc.want {
				t.Fatalf("level=%v want=%v", got, tc.want)
			}
		})
	}
}
