package exporter

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Error codes recorded in the audit log. The prefix names the subsystem
// that rejected the data.
const (
	CodeGeoDegenerate   = "GEO001" // degenerate or non-manifold geometry
	CodeGeoNoVertices   = "GEO003" // empty vertex stream
	CodeUVMissing       = "UV003"  // missing texture coordinates
	CodeMatMissingSlot  = "MAT001" // triangle references a missing material slot
	CodeMatBadTexture   = "MAT002" // texture reference outside the resource root
	CodeAnmMissingBone  = "ANM001" // animation channel targets an unknown bone
	CodeAnmKeyOrder     = "ANM003" // key times not monotonic
	CodeNameInvalid     = "NAM001" // name does not survive the fixed-width field
	CodePathOutsideRoot = "PATH001"
	CodeDepMissing      = "DEP001" // exported file depends on a file that was not written
	CodeBoneRange       = "GEO005" // bone index beyond the skin format range
)

// AuditLog records the operations, warnings and errors of an export run.
// Entries go to a rotated audit file and optionally to the console.
type AuditLog struct {
	log *zap.Logger
}

// NewAuditLog opens the audit log. An empty path disables file output.
func NewAuditLog(cfg LoggingSettings, console bool) *AuditLog {
	lvl := parseLevel(cfg.Level)

	var cores []zapcore.Core
	if console {
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl))
	}
	if cfg.AuditFile != "" {
		w := &lumberjack.Logger{
			Filename:   cfg.AuditFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			LocalTime:  true,
		}
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
	}
	return &AuditLog{log: zap.New(zapcore.NewTee(cores...))}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (a *AuditLog) Info(msg string, object string) {
	a.log.Info(msg, zap.String("object", object))
}

func (a *AuditLog) Warning(code, msg, object string) {
	a.log.Warn(msg, zap.String("code", code), zap.String("object", object))
}

func (a *AuditLog) Error(code, msg, object string) {
	a.log.Error(msg, zap.String("code", code), zap.String("object", object))
}

// Sync flushes buffered entries. Call before the process exits.
func (a *AuditLog) Sync() {
	_ = a.log.Sync()
}
