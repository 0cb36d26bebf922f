package chat

import (
	"strconv"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestConnectionManager_Register(t *testing.T) {
	m := NewConnectionManager()
	conn := &websocket.Conn{}
	userID := "user_abc123def456"
	sessionID := "tab-1"

	m.Register(userID, sessionID, conn)

	active := m.GetActive(userID, sessionID)
	if active != conn {
		t.Errorf("Expected connection %v, got %v", conn, active)
	}
	if m.ActiveCount() != 1 {
		t.Errorf("Expected 1 active connection, got %d", m.ActiveCount())
	}
}

func TestConnectionManager_Unregister(t *testing.T) {
	m := NewConnectionManager()
	conn := &websocket.Conn{}
	userID := "user_abc123def456"
	sessionID := "tab-1"

	m.Register(userID, sessionID, conn)
	m.Unregister(userID, sessionID, conn)

	active := m.GetActive(userID, sessionID)
	if active != nil {
		t.Errorf("Expected nil connection, got %v", active)
	}
	if m.ActiveCount() != 0 {
		t.Errorf("Expected 0 active connections, got %d", m.ActiveCount())
	}
}

func TestConnectionManager_UnregisterStale(t *testing.T) {
	m := NewConnectionManager()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}
	userID := "user_abc123def456"
	session1 := "tab-1"
	session2 := "tab-2"

	m.Register(userID, session1, conn1)

	// Another tab should remain active when the first tab disconnects.
	m.Register(userID, session2, conn2)

	m.Unregister(userID, session1, conn1)

	active := m.GetActive(userID, session2)
	if active != conn2 {
		t.Errorf("Expected connection %v, got %v", conn2, active)
	}
}

func TestConnectionManager_UnregisterWrongConnIsNoop(t *testing.T) {
	m := NewConnectionManager()
	current := &websocket.Conn{}
	stale := &websocket.Conn{}
	userID := "user_abc123def456"
	sessionID := "tab-1"

	m.Register(userID, sessionID, current)

	// A stale goroutine unregistering an old connection must not evict the
	// current one.
	m.Unregister(userID, sessionID, stale)

	if m.GetActive(userID, sessionID) != current {
		t.Error("Expected current connection to survive a stale unregister")
	}
}

func TestConnectionManager_ConcurrentAccess(t *testing.T) {
	m := NewConnectionManager()
	userID := "concurrentUser"

	go func() {
		for i := 0; i < 1000; i++ {
			m.Register(userID, "tab-"+strconv.Itoa(i), &websocket.Conn{})
		}
	}()

	go func() {
		for i := 0; i < 1000; i++ {
			m.GetActive(userID, "tab-"+strconv.Itoa(i))
		}
	}()

	time.Sleep(100 * time.Millisecond)
}
