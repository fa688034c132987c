package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	failing  bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.messages...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	go h.Run(ctx)
	return h
}

func TestHub_PublishRespectsCompany(t *testing.T) {
	h := startHub(t)
	companyA, companyB := uuid.New(), uuid.New()

	a, b, admin := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Register(a, &companyA)
	h.Register(b, &companyB)
	h.Register(admin, nil)

	h.Publish(Event{Type: EventStockUpdate, CompanyID: companyA, Data: map[string]int{"stock": 3}})

	require.Eventually(t, func() bool { return len(admin.received()) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(a.received()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, b.received())

	var evt Event
	require.NoError(t, json.Unmarshal(a.received()[0], &evt))
	assert.Equal(t, EventStockUpdate, evt.Type)
	assert.Equal(t, companyA, evt.CompanyID)
	assert.False(t, evt.Timestamp.IsZero())
}

func TestHub_DropsFailingClient(t *testing.T) {
	h := startHub(t)
	conn := &fakeConn{failing: true}
	h.Register(conn, nil)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Publish(Event{Type: EventTransactionCreated, CompanyID: uuid.New()})

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, conn.isClosed())
}

func TestHub_Unregister(t *testing.T) {
	h := startHub(t)
	conn := &fakeConn{}
	h.Register(conn, nil)
	h.Unregister(conn)

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, conn.isClosed())
}

func TestHub_PublishDoesNotBlockWithoutRunner(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(h.broadcast)+10; i++ {
			h.Publish(Event{Type: EventStockUpdate})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	conn := &fakeConn{}
	h.Register(conn, nil)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped
	assert.True(t, conn.isClosed())

	// Calls after shutdown return instead of blocking.
	late := &fakeConn{}
	h.Register(late, nil)
	h.Unregister(late)
	assert.True(t, late.isClosed())
}
