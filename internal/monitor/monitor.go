// Package monitor 实现轮询-去重-投递的控制循环。
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/ppNutt/discordnewsfeednotifier/internal/discord"
	"github.com/ppNutt/discordnewsfeednotifier/internal/feed"
	"github.com/ppNutt/discordnewsfeednotifier/internal/logger"
	"github.com/ppNutt/discordnewsfeednotifier/internal/state"
)

// Source 提供订阅源的最新规范化条目。
type Source interface {
	Latest(ctx context.Context) (feed.Entry, bool, error)
}

// Notifier 投递格式化后的通知消息。
type Notifier interface {
	Send(ctx context.Context, msg *discord.Message) error
}

// StateStore 持久化去重状态和投递历史。
type StateStore interface {
	LastID() (string, error)
	SetLastID(id string) error
	RecordDelivery(entryID, title, status string) error
}

// Monitor 单订阅源监控器。
// 整个生命周期只有一个控制 goroutine：一个周期（包括其中的网络等待）
// 完整结束后才开始下一个周期的计时，周期之间不会并发。
type Monitor struct {
	source   Source
	notifier Notifier
	store    StateStore
	sm       *StateMachine
	interval time.Duration

	// lastID 内存中的去重游标，只在持久化成功后推进。
	lastID string
}

// New 创建监控器并加载持久化的去重状态。
func New(source Source, notifier Notifier, store StateStore, interval time.Duration) (*Monitor, error) {
	lastID, err := store.LastID()
	if err != nil {
		return nil, fmt.Errorf("加载去重状态失败: %w", err)
	}

	if lastID != "" {
		logger.Infof("[monitor] 上次已投递条目 ID: %s", lastID)
	} else {
		logger.Infof("[monitor] 没有历史记录，从头开始")
	}

	return &Monitor{
		source:   source,
		notifier: notifier,
		store:    store,
		sm:       NewStateMachine(),
		interval: interval,
		lastID:   lastID,
	}, nil
}

// Run 启动监控循环，直到 ctx 被取消。
// 单个周期的任何失败都不会终止循环，只有外部中断才能结束。
func (m *Monitor) Run(ctx context.Context) error {
	logger.Infof("[monitor] 监控循环启动 (间隔 %s)", m.interval)

	for {
		m.runCycle(ctx)

		select {
		case <-ctx.Done():
			logger.Infof("[monitor] 收到停止信号，监控循环退出")
			return nil
		case <-time.After(m.interval):
		}
	}
}

// runCycle 执行一个周期，并把周期内的任何 panic 拦在循环边界。
func (m *Monitor) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[monitor] 周期内发生 panic（已恢复）: %v", r)
		}
		m.sm.ForceIdle()
	}()

	m.sm.Transition(StateChecking)
	m.checkOnce(ctx)
}

// checkOnce 一个完整的抓取 → 比较 → 投递 → 持久化周期。
func (m *Monitor) checkOnce(ctx context.Context) {
	entry, ok, err := m.source.Latest(ctx)
	if err != nil {
		logger.Warnf("[monitor] 抓取订阅源失败，跳过本轮: %v", err)
		return
	}
	if !ok {
		logger.Warnf("[monitor] 订阅源中没有条目")
		return
	}

	// 相同 ID（包括双方都为空）表示没有新条目
	if entry.ID == m.lastID {
		logger.Debugf("[monitor] 没有新条目 (last_id=%s)", m.lastID)
		return
	}

	logger.Infof("[monitor] 检测到新条目: %q (ID: %s)", entry.Title, entry.ID)

	msg := discord.BuildMessage(entry)
	if err := m.notifier.Send(ctx, msg); err != nil {
		// 不推进去重状态，下个周期对同一条目重新投递
		logger.Warnf("[monitor] 投递失败，下个周期重试: %v", err)
		m.recordHistory(entry, state.StatusFailed)
		return
	}

	// 确认投递成功后立即持久化。持久化失败时不推进内存中的 last_id：
	// 宁可下个周期重复投递一次，也不丢失去重记忆。
	if err := m.store.SetLastID(entry.ID); err != nil {
		logger.Errorf("[monitor] 持久化 last_id 失败: %v", err)
		m.recordHistory(entry, state.StatusDelivered)
		return
	}
	m.lastID = entry.ID
	m.recordHistory(entry, state.StatusDelivered)
	logger.Infof("[monitor] 已保存条目 ID: %s", m.lastID)
}

// recordHistory 追加投递历史，失败只记日志。
func (m *Monitor) recordHistory(entry feed.Entry, status string) {
	if err := m.store.RecordDelivery(entry.ID, entry.Title, status); err != nil {
		logger.Debugf("[monitor] 写入投递历史失败: %v", err)
	}
}
