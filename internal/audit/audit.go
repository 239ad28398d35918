// Package audit keeps a structured record of every rendered and submitted job.
package audit

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hpcjobs/jobsubmit/internal/config"
	"github.com/hpcjobs/jobsubmit/internal/scheduler"
	"github.com/hpcjobs/jobsubmit/internal/utils"
)

// Logger writes one JSON record per render or submission.
// The zero value is not usable; a disabled Logger comes from New with an empty File.
type Logger struct {
	log     *zap.Logger
	closers []io.Closer
}

// New builds an audit logger from c. An empty c.File disables auditing.
// "stdout" and "stderr" write to the process streams, anything else is a file
// path, rotated through lumberjack when c.Rotate is set.
func New(c config.LogConfig) (*Logger, error) {
	out := strings.TrimSpace(c.File)
	if out == "" {
		return &Logger{log: zap.NewNop()}, nil
	}

	l := &Logger{}
	var ws zapcore.WriteSyncer
	switch strings.ToLower(out) {
	case "stdout":
		ws = zapcore.AddSync(os.Stdout)
	case "stderr":
		ws = zapcore.AddSync(os.Stderr)
	default:
		if dir := filepath.Dir(out); dir != "." {
			if err := utils.EnsureDir(dir); err != nil {
				return nil, err
			}
		}
		if c.Rotate {
			rotator := &lumberjack.Logger{
				Filename:   out,
				MaxSize:    max(c.MaxSizeMB, 1),
				MaxBackups: max(c.MaxBackups, 1),
				MaxAge:     max(c.MaxAgeDays, 1),
				Compress:   true,
			}
			l.closers = append(l.closers, rotator)
			ws = zapcore.AddSync(rotator)
		} else {
			f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, utils.PermFile)
			if err != nil {
				return nil, err
			}
			l.closers = append(l.closers, f)
			ws = zapcore.AddSync(f)
		}
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, parseLevel(c.Level))
	l.log = zap.New(core)
	return l, nil
}

// NewWithCore wraps an existing zap core, mainly for tests.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{log: zap.New(core)}
}

func parseLevel(s string) zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	switch strings.ToLower(s) {
	case "debug":
		level.SetLevel(zap.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zap.WarnLevel)
	case "error":
		level.SetLevel(zap.ErrorLevel)
	default:
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func jobFields(job *scheduler.Job) []zap.Field {
	return []zap.Field{
		zap.String("scheduler", job.Type().String()),
		zap.String("job_name", job.Name()),
		zap.String("queue", job.Queue()),
		zap.Int("ntasks", job.TaskCount()),
		zap.Int("nodes", job.NodeCount()),
		zap.String("time_limit", job.TimeLimit().Format(job.Type())),
		zap.String("executable", job.Executable()),
		zap.Strings("args", job.Args()),
		zap.Int("repetitions", job.Repetitions()),
	}
}

// RecordRender logs that scripts were written without being submitted.
func (l *Logger) RecordRender(job *scheduler.Job, scripts *scheduler.Scripts) {
	fields := append(jobFields(job),
		zap.String("runscript", scripts.Runscript),
		zap.String("command_script", scripts.CommandScript),
	)
	l.log.Info("rendered", fields...)
}

// RecordSubmission logs the outcome of one submission. err is the error
// returned alongside res, if any; res may be nil when rendering failed.
func (l *Logger) RecordSubmission(job *scheduler.Job, res *scheduler.SubmitResult, err error) {
	fields := jobFields(job)
	if res != nil {
		fields = append(fields,
			zap.String("submission_id", res.SubmissionID),
			zap.String("submit_script", res.Scripts.SubmitScript()),
			zap.Strings("command", res.Command),
			zap.Int("exit_code", res.ExitCode),
			zap.Duration("duration", res.Duration),
			zap.String("stdout", strings.TrimSpace(res.Stdout)),
			zap.String("stderr", strings.TrimSpace(res.Stderr)),
		)
	}
	if err != nil {
		l.log.Error("submission failed", append(fields, zap.Error(err))...)
		return
	}
	l.log.Info("submitted", fields...)
}

// Close flushes buffered records and closes any files.
func (l *Logger) Close() error {
	// Sync on stdout/stderr fails on some terminals; only file errors matter
	_ = l.log.Sync()
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
