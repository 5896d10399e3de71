package db

import (
	"context"
	"fmt"
	"time"

	"camerastore/internal/config"
	"camerastore/internal/domain/model"

	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database はアプリが持つ唯一のDB接続。main で作って各Repositoryに渡す。
type Database struct {
	Gorm *gorm.DB
}

// Connect はDBに接続して疎通確認まで行う。失敗したら retries 回まで待って再接続する。
func Connect(ctx context.Context, cfg config.Config, lg *log.Logger) (*Database, error) {
	var lastErr error
	attempts := cfg.DBConnectRetries + 1

	for i := 1; i <= attempts; i++ {
		gdb, err := open(cfg)
		if err == nil {
			err = ping(ctx, gdb)
			if err == nil {
				lg.Infof("database connected (attempt %d/%d)", i, attempts)
				return &Database{Gorm: gdb}, nil
			}
			closeQuietly(gdb)
		}
		lastErr = err
		lg.Warnf("database connect failed (attempt %d/%d): %v", i, attempts, err)

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.DBRetryDelay):
		}
	}
	return nil, fmt.Errorf("connect database: %w", lastErr)
}

// New は既存の *gorm.DB を包む（テストでSQLiteを渡す用）
func New(gdb *gorm.DB) *Database {
	return &Database{Gorm: gdb}
}

// Migrate はテーブルを作成・更新する。
func (d *Database) Migrate() error {
	return d.Gorm.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderCounter{},
		&model.AuditLog{},
	)
}

func (d *Database) Ping(ctx context.Context) error {
	return ping(ctx, d.Gorm)
}

// Close はコネクションプールを閉じる。
func (d *Database) Close() error {
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func open(cfg config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		//一意制約違反を gorm.ErrDuplicatedKey に変換する
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

func ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(pctx)
}

func closeQuietly(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
