// Package database 提供统一的 SQLite 数据库连接。
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppNutt/discordnewsfeednotifier/internal/logger"
	_ "modernc.org/sqlite"
)

// DB 是 feedmon 的 SQLite 数据库连接。
// 去重状态和投递历史共享同一个数据库文件，便于备份。
type DB struct {
	*sql.DB
	path string
}

// Open 打开或创建数据库。
// dbPath 为空时使用 dataDir 下的默认文件名。
func Open(dataDir, dbPath string) (*DB, error) {
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "feedmon.db")
	}

	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// 设置 WAL 模式（更好的并发性能）
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置 WAL 模式失败: %w", err)
	}

	logger.Infof("[database] 数据库已打开: %s", dbPath)

	return &DB{DB: db, path: dbPath}, nil
}

// Path 返回数据库文件路径。
func (db *DB) Path() string {
	return db.path
}

// Migrate 运行数据库迁移。
func (db *DB) Migrate() error {
	migrations := []string{
		// 监控状态表（单行键值，保存 last_id）
		`CREATE TABLE IF NOT EXISTS monitor_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// 投递历史表
		`CREATE TABLE IF NOT EXISTS delivery_history (
			id TEXT PRIMARY KEY,
			entry_id TEXT NOT NULL,
			title TEXT DEFAULT '',
			status TEXT NOT NULL,
			sent_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("执行迁移失败: %w", err)
		}
	}
	return nil
}
