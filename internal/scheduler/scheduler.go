package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task — отменяемая задача планировщика.
type Task interface {
	// Stop отменяет задачу. Повторный вызов безопасен.
	Stop()
}

// Scheduler определяет интерфейс для периодических и отложенных задач игр.
type Scheduler interface {
	// Every вызывает fn каждые d, пока задача не остановлена.
	Every(d time.Duration, fn func()) Task

	// After вызывает fn один раз через d.
	After(d time.Duration, fn func()) Task
}

// Real реализует Scheduler на таймерах рантайма.
// Каждый вызов выполняется под locker, поэтому колбэк видит то же состояние,
// что и синхронные операции сессии. Остановленная задача больше не вызывается,
// даже если таймер уже сработал и ждёт блокировку.
type Real struct {
	locker sync.Locker
}

// NewReal создаёт планировщик. locker может быть nil.
func NewReal(locker sync.Locker) *Real {
	if locker == nil {
		locker = noLock{}
	}
	return &Real{locker: locker}
}

type realTask struct {
	stopped atomic.Bool
	timer   *time.Timer
	done    chan struct{}
}

func (t *realTask) Stop() {
	if !t.stopped.CompareAndSwap(false, true) {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.done != nil {
		close(t.done)
	}
}

// Every запускает периодическую задачу.
func (s *Real) Every(d time.Duration, fn func()) Task {
	t := &realTask{done: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				s.run(t, fn)
			}
		}
	}()

	return t
}

// After запускает отложенную задачу.
func (s *Real) After(d time.Duration, fn func()) Task {
	t := &realTask{}
	t.timer = time.AfterFunc(d, func() {
		s.run(t, func() {
			t.stopped.Store(true)
			fn()
		})
	})
	return t
}

func (s *Real) run(t *realTask, fn func()) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if t.stopped.Load() {
		return
	}
	fn()
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
