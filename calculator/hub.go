package calculator

import (
	"context"
	"errors"
	"sync"

	"turbojet/model"
)

// ErrBusy 同一个 hub 上已有扫描在运行
var ErrBusy = errors.New("calculator: a sweep is already running")

// CalcHub 扫描任务的启停信号与进度推送
type CalcHub struct {
	mu     sync.Mutex
	cancel context.CancelFunc

	// 扫描点计算完成后推送
	Progress chan model.SweepPoint
}

func NewCalcHub() *CalcHub {
	return &CalcHub{
		Progress: make(chan model.SweepPoint, 16),
	}
}

// StartSignal 开始一次扫描，返回的 ctx 在 StopSignal 或 parent 结束时取消
func (ch *CalcHub) StartSignal(parent context.Context) (context.Context, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.cancel != nil {
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(parent)
	ch.cancel = cancel
	return ctx, nil
}

// StopSignal 停止正在运行的扫描，没有扫描时返回 false
func (ch *CalcHub) StopSignal() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.cancel == nil {
		return false
	}
	ch.cancel()
	ch.cancel = nil
	return true
}

// Done 扫描结束后调用，释放 hub
func (ch *CalcHub) Done() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}
}

func (ch *CalcHub) Running() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.cancel != nil
}

// PushSignal 推送一个扫描点，ctx 取消时放弃
func (ch *CalcHub) PushSignal(ctx context.Context, p model.SweepPoint) {
	select {
	case ch.Progress <- p:
	case <-ctx.Done():
	}
}
