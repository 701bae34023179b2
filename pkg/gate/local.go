package gate

import (
	"context"
	"sync/atomic"
)

// Local 是进程内的闸门实现，基于原子 CAS。
type Local struct {
	pending atomic.Bool
}

// NewLocal 创建一个处于 idle 状态的进程内闸门。
func NewLocal() *Local {
	return &Local{}
}

func (g *Local) TryAcquire(context.Context) (bool, error) {
	return g.pending.CompareAndSwap(false, true), nil
}

func (g *Local) Release(context.Context) error {
	g.pending.Store(false)
	return nil
}

func (g *Local) State(context.Context) (State, error) {
	if g.pending.Load() {
		return Pending, nil
	}
	return Idle, nil
}

// LocalFactory 为每个会话创建 Local 闸门。
type LocalFactory struct{}

func (LocalFactory) New(string) Gate { return NewLocal() }
