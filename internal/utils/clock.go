package utils

import (
	"sync"
	"time"
)

// Clock отдаёт текущее время; в тестах подменяется на MockClock
type Clock interface {
	Now() time.Time
}

// RealClock возвращает системное время в UTC
type RealClock struct{}

// NewRealClock создаёт системные часы
func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock представляет управляемые часы для тестов
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
}

// NewMockClock создаёт часы, остановленные на t
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Advance сдвигает часы вперёд
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	c.mu.Unlock()
}

// Set устанавливает время
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.currentTime = t
	c.mu.Unlock()
}
