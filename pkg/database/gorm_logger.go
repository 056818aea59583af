package database

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/ingest/pkg/log"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

/**
 * @file: gorm_logger.go
 * @description: routes gorm logs through the zap global logger
 */

type GormLogger struct {
	Config logger.Config
	Level  logger.LogLevel
}

// NewGormLogger returns a zap backed gorm logger; output=false keeps it silent
// except for errors.
func NewGormLogger(output bool) logger.Interface {
	level := logger.Error
	if output {
		level = logger.Info
	}
	return &GormLogger{
		Config: logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
		Level: level,
	}
}

func (l *GormLogger) sugar() *zap.SugaredLogger {
	return log.GetLogger().Desugar().WithOptions(zap.AddCallerSkip(3)).Sugar()
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.Level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.Level >= logger.Info {
		l.sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.Level >= logger.Warn {
		l.sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.Level >= logger.Error {
		l.sugar().Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.Level >= logger.Error &&
		(!errors.Is(err, logger.ErrRecordNotFound) || !l.Config.IgnoreRecordNotFoundError):
		sql, rows := fc()
		l.sugar().Errorw("sql error", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case l.Config.SlowThreshold != 0 && elapsed > l.Config.SlowThreshold && l.Level >= logger.Warn:
		sql, rows := fc()
		l.sugar().Warnw("slow sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.Level >= logger.Info:
		sql, rows := fc()
		l.sugar().Debugw("sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
