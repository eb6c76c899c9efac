package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeConn записывает отправленные кадры для проверок
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("write failed")
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func TestRegistryAddGet(t *testing.T) {
	registry := NewConnRegistry()
	conn := &fakeConn{}

	registry.Add(1, conn)
	got, ok := registry.Get(1)
	assert.True(t, ok)
	assert.Same(t, conn, got.(*fakeConn))

	_, ok = registry.Get(2)
	assert.False(t, ok)
}

func TestRegistryAddOverwrites(t *testing.T) {
	registry := NewConnRegistry()
	oldConn := &fakeConn{}
	newConn := &fakeConn{}

	registry.Add(1, oldConn)
	// Одно живое соединение на пользователя: новое вытесняет старое
	registry.Add(1, newConn)

	got, ok := registry.Get(1)
	assert.True(t, ok)
	assert.Same(t, newConn, got.(*fakeConn))
}

func TestRegistryCompareAndRemove(t *testing.T) {
	registry := NewConnRegistry()
	oldConn := &fakeConn{}
	newConn := &fakeConn{}

	registry.Add(1, oldConn)
	registry.Add(1, newConn)

	// Запоздавший disconnect старого соединения не должен выбить новое
	registry.Remove(1, oldConn)
	got, ok := registry.Get(1)
	assert.True(t, ok)
	assert.Same(t, newConn, got.(*fakeConn))

	registry.Remove(1, newConn)
	_, ok = registry.Get(1)
	assert.False(t, ok)
}

func TestRegistrySendMissingUser(t *testing.T) {
	registry := NewConnRegistry()
	// Отсутствие соединения - не ошибка и не паника
	registry.Send(42, []byte("hello"))
}

func TestRegistrySendWriteErrorSwallowed(t *testing.T) {
	registry := NewConnRegistry()
	conn := &fakeConn{fail: true}
	registry.Add(1, conn)

	// Ошибка записи глотается: доставка best-effort
	registry.Send(1, []byte("hello"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewConnRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		userID := int64(i % 10)
		conn := &fakeConn{}
		go func() {
			defer wg.Done()
			registry.Add(userID, conn)
		}()
		go func() {
			defer wg.Done()
			registry.Get(userID)
		}()
		go func() {
			defer wg.Done()
			registry.Remove(userID, conn)
		}()
	}
	wg.Wait()
}
