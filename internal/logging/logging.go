package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a no-op logger unless debug is set, so library and test
// consumers stay quiet by default.
func New(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	return NewTo(os.Stderr, zapcore.DebugLevel)
}

func NewTo(w io.Writer, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
