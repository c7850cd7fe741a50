package logger

import (
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/tribehive/ai-orchestrator/internal/cli"
)

// coloredConsoleEncoder wraps zap's console encoder to syntax-highlight the
// trailing JSON field blob on each line.
type coloredConsoleEncoder struct {
	zapcore.Encoder
}

func NewColoredConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &coloredConsoleEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
	}
}

func (c *coloredConsoleEncoder) Clone() zapcore.Encoder {
	return &coloredConsoleEncoder{
		Encoder: c.Encoder.Clone(),
	}
}

func (c *coloredConsoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := c.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return nil, err
	}

	logLine := buf.String()

	// The console encoder separates headers from fields with a tab. The
	// first "\t{" marks the start of the JSON blob when fields are present.
	splitIdx := strings.Index(logLine, "\t{")
	if splitIdx == -1 {
		return buf, nil
	}

	metaPart := logLine[:splitIdx+1]
	jsonPart := logLine[splitIdx+1:]

	newBuf := buffer.NewPool().Get()
	newBuf.AppendString(metaPart)
	newBuf.AppendString(cli.HighlightJSON(jsonPart))
	buf.Free()

	return newBuf, nil
}
