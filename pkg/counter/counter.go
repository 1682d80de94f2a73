package counter

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Counter は、終端状態に達したタスクの数を数える共有カウンタです。
// どのワーカー・スレッド・タスクから呼び出されても更新が失われてはいけません。
type Counter interface {
	// Increment は値を1増やし、増加後の値を返します。
	Increment() int
	// Value は現在の値を返します。
	Value() int
}

// Kind はカウンタの実装種別です。
type Kind string

const (
	KindMutex  Kind = "mutex"
	KindAtomic Kind = "atomic"
)

// ParseKind は文字列から Kind を解析します。空文字列は KindMutex です。
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindMutex:
		return KindMutex, nil
	case KindAtomic:
		return KindAtomic, nil
	default:
		return KindMutex, fmt.Errorf("無効なカウンタ種別です: %q (mutex, atomic のいずれか)", s)
	}
}

// New は種別に応じたカウンタを生成します。未知の種別は KindMutex として扱います。
func New(kind Kind) Counter {
	if kind == KindAtomic {
		return NewAtomic()
	}
	return NewMutex()
}

// MutexCounter は sync.Mutex による排他制御で更新するカウンタです。
type MutexCounter struct {
	mu sync.Mutex
	n  int
}

// NewMutex は初期値 0 の MutexCounter を生成します。
func NewMutex() *MutexCounter {
	return &MutexCounter{}
}

func (c *MutexCounter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

func (c *MutexCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// AtomicCounter は sync/atomic で更新するロックフリーのカウンタです。
type AtomicCounter struct {
	n atomic.Int64
}

// NewAtomic は初期値 0 の AtomicCounter を生成します。
func NewAtomic() *AtomicCounter {
	return &AtomicCounter{}
}

func (c *AtomicCounter) Increment() int {
	return int(c.n.Add(1))
}

func (c *AtomicCounter) Value() int {
	return int(c.n.Load())
}
