package monitor

import (
	"sync"

	"github.com/ppNutt/discordnewsfeednotifier/internal/logger"
)

// State 表示监控循环的当前运行状态。
type State int

const (
	// StateIdle — 空闲，等待下一个轮询时刻。
	StateIdle State = iota
	// StateChecking — 一个抓取-比较-投递周期正在进行。
	StateChecking
)

var stateNames = [...]string{
	"Idle",
	"Checking",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// StateMachine 管理线程安全的状态转换。
// 两个状态之间交替：Idle → Checking（周期开始），Checking → Idle（周期结束）。
type StateMachine struct {
	mu      sync.RWMutex
	current State
}

// NewStateMachine 创建一个初始状态为 Idle 的状态机。
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateIdle}
}

// Current 返回当前状态。
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// Transition 尝试切换状态。重复进入同一状态视为非法转换。
func (sm *StateMachine) Transition(to State) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.current == to {
		logger.Debugf("[state] 非法转换 %s → %s", sm.current, to)
		return false
	}

	from := sm.current
	sm.current = to
	logger.Debugf("[state] %s → %s", from, to)
	return true
}

// ForceIdle 无条件重置状态为 Idle（用于周期收尾和错误恢复）。
func (sm *StateMachine) ForceIdle() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.current != StateIdle {
		logger.Debugf("[state] %s → Idle", sm.current)
		sm.current = StateIdle
	}
}
