package calculator

import (
	"context"
	"time"
)

// 基于切片的任务分配：把 [0, total) 切成连续的段，每个 worker 按顺序处理一段。
// 段内相邻的工作点可以用前一点的解作初值
type executor struct {
	workers int
}

type task struct {
	start int
	end   int
}

func newExecutor(workers int) *executor {
	if workers <= 0 {
		workers = 1
	}
	return &executor{workers: workers}
}

// split 前 remainder 段各多分一个
func (e *executor) split(total int) []task {
	if total <= 0 {
		return nil
	}
	workers := e.workers
	if workers > total {
		workers = total
	}
	taskLen, remainder := total/workers, total%workers
	tasks := make([]task, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		n := taskLen
		if i < remainder {
			n++
		}
		tasks = append(tasks, task{start: start, end: start + n})
		start += n
	}
	return tasks
}

// dispatchTask 分发并等待全部段完成。ctx 取消后未开始的段直接跳过，
// 正在执行的段由 f 自己检查 ctx
func (e *executor) dispatchTask(ctx context.Context, total int, f func(ctx context.Context, t task)) time.Duration {
	start := time.Now()
	tasks := e.split(total)
	if len(tasks) == 0 {
		return time.Since(start)
	}

	dispatchChan := make(chan task, len(tasks))
	doneSoFar := make(chan struct{}, len(tasks))
	for _, t := range tasks {
		dispatchChan <- t
	}
	close(dispatchChan)

	for i := 0; i < len(tasks); i++ {
		go func() {
			for t := range dispatchChan {
				if ctx.Err() == nil {
					f(ctx, t)
				}
				doneSoFar <- struct{}{}
			}
		}()
	}
	for range tasks {
		<-doneSoFar
	}
	return time.Since(start)
}
