package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// AppName names the logger and the binary.
const AppName = "panel-mcp"

// LoggingConfig selects the stderr log level.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"required,oneof=none debug normal"`
}

// Prepare returns the program logger. All output goes to stderr since stdout
// carries the MCP protocol.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	return conf.PrepareTo(os.Stderr)
}

// PrepareTo is Prepare with an explicit destination.
func (conf *LoggingConfig) PrepareTo(w io.Writer) (*zap.Logger, error) {
	var level zapcore.Level
	switch conf.Level {
	case "none":
		return zap.NewNop(), nil
	case "normal":
		level = zapcore.InfoLevel
	case "debug":
		level = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", conf.Level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(newEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(level))
	return zap.New(core).Named(AppName), nil
}

// When logging error to console - do not output verbose message.

type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	newFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			e := f.Interface.(error)
			f.Interface = errors.New(e.Error())
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
