// Package state 持久化去重状态（最近一次已投递的条目 ID）和投递历史。
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppNutt/discordnewsfeednotifier/internal/database"
)

const lastIDKey = "last_id"

// 投递历史的状态值。
const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Delivery 一条投递历史记录。
type Delivery struct {
	ID      string
	EntryID string
	Title   string
	Status  string
	SentAt  time.Time
}

// Store 去重状态存储。
// last_id 在启动时读取一次，每次投递成功后立即写入（不做批量）。
type Store struct {
	db *database.DB
}

// NewStore 创建状态存储。
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// LastID 读取最近一次已投递的条目 ID。从未投递过时返回空字符串。
func (s *Store) LastID() (string, error) {
	var v string
	err := s.db.QueryRow(
		`SELECT value FROM monitor_state WHERE key = ?`, lastIDKey,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取 last_id 失败: %w", err)
	}
	return v, nil
}

// SetLastID 写入最近一次已投递的条目 ID。
func (s *Store) SetLastID(id string) error {
	_, err := s.db.Exec(
		`INSERT INTO monitor_state (key, value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		lastIDKey, id,
	)
	if err != nil {
		return fmt.Errorf("写入 last_id 失败: %w", err)
	}
	return nil
}

// RecordDelivery 追加一条投递历史。失败只影响历史记录，不影响去重状态。
func (s *Store) RecordDelivery(entryID, title, status string) error {
	_, err := s.db.Exec(
		`INSERT INTO delivery_history (id, entry_id, title, status) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), entryID, title, status,
	)
	if err != nil {
		return fmt.Errorf("写入投递历史失败: %w", err)
	}
	return nil
}

// RecentDeliveries 按时间倒序返回最近的投递历史。
func (s *Store) RecentDeliveries(limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, entry_id, title, status, sent_at
		 FROM delivery_history ORDER BY sent_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("查询投递历史失败: %w", err)
	}
	defer rows.Close()

	var result []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.EntryID, &d.Title, &d.Status, &d.SentAt); err != nil {
			return nil, fmt.Errorf("扫描投递历史失败: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
