package log

import (
	"fmt"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferPool = buffer.NewPool()

// lineEncoder renders entries as "[<ISO-8601>] <message> <arg> <arg>...",
// with an extra "[ERROR] " prefix on error-and-above entries — the plain
// text line format spec.md §6 requires, built on top of zapcore.Encoder
// rather than zap's default JSON encoding.
type lineEncoder struct {
	zapcore.Encoder
}

func newLineEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		MessageKey:     "M",
		LevelKey:       "L",
		TimeKey:        "T",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	}
	return &lineEncoder{Encoder: zapcore.NewConsoleEncoder(cfg)}
}

func (e *lineEncoder) Clone() zapcore.Encoder {
	return &lineEncoder{Encoder: e.Encoder.Clone()}
}

func (e *lineEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufferPool.Get()

	buf.AppendByte('[')
	buf.AppendString(ent.Time.UTC().Format(time.RFC3339))
	buf.AppendString("] ")

	if ent.Level >= zapcore.ErrorLevel {
		buf.AppendString("[ERROR] ")
	}

	buf.AppendString(ent.Message)

	for _, f := range fields {
		buf.AppendByte(' ')
		buf.AppendString(fieldString(f))
	}

	buf.AppendString(zapcore.DefaultLineEnding)
	return buf, nil
}

// fieldString renders a single zap.Field's value compactly, the way a
// positional printf argument would render (spec.md §4.1: "serialized to a
// compact text form and concatenated").
func fieldString(f zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	f.AddTo(enc)
	v, ok := enc.Fields[f.Key]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}
