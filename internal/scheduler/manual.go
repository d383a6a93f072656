package scheduler

import "time"

// Manual реализует Scheduler на виртуальных часах.
// Время двигается только через Advance, колбэки выполняются в вызывающей горутине.
type Manual struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

// NewManual создаёт планировщик с виртуальным временем 0.
func NewManual() *Manual {
	return &Manual{}
}

type manualTask struct {
	at      time.Duration
	every   time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTask) Stop() {
	t.stopped = true
}

// Every регистрирует периодическую задачу.
func (m *Manual) Every(d time.Duration, fn func()) Task {
	return m.add(d, d, fn)
}

// After регистрирует отложенную задачу.
func (m *Manual) After(d time.Duration, fn func()) Task {
	return m.add(d, 0, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) *manualTask {
	m.seq++
	t := &manualTask{at: m.now + d, every: every, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Now возвращает текущее виртуальное время.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending возвращает количество живых задач.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance сдвигает время на d и выполняет наступившие задачи по порядку.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d

	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}

		m.now = next.at
		if next.every > 0 {
			next.at += next.every
		} else {
			next.stopped = true
		}
		next.fn()
	}

	m.now = target
	m.prune()
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	var next *manualTask
	for _, t := range m.tasks {
		if t.stopped || t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (m *Manual) prune() {
	alive := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped {
			alive = append(alive, t)
		}
	}
	m.tasks = alive
}
