package netmon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMonitor_DrainsOncePerReconnect(t *testing.T) {
	var drains int
	m := New(func(ctx context.Context) { drains++ }, nil, nil)
	ctx := context.Background()

	// Initial state is online; repeating it is steady state, no drain
	m.SetStatus(ctx, StatusOnline)
	if drains != 0 {
		t.Fatalf("Steady state must not drain, got %d", drains)
	}

	m.SetStatus(ctx, StatusOffline)
	if drains != 0 {
		t.Fatalf("Going offline must not drain, got %d", drains)
	}

	m.SetStatus(ctx, StatusOnline)
	if drains != 1 {
		t.Fatalf("Reconnect must drain exactly once, got %d", drains)
	}

	// Repeated online signals do not re-drain
	m.SetStatus(ctx, StatusOnline)
	m.SetStatus(ctx, StatusOnline)
	if drains != 1 {
		t.Fatalf("Steady online must not re-drain, got %d", drains)
	}

	// A second full cycle drains again
	m.SetStatus(ctx, StatusOffline)
	m.SetStatus(ctx, StatusOnline)
	if drains != 2 {
		t.Fatalf("Second reconnect must drain again, got %d", drains)
	}
}

func TestMonitor_NotifiesOnEdgesOnly(t *testing.T) {
	var notifications []Status
	m := New(nil, func(s Status) { notifications = append(notifications, s) }, nil)
	ctx := context.Background()

	m.SetStatus(ctx, StatusOnline)  // steady state
	m.SetStatus(ctx, StatusOffline) // edge
	m.SetStatus(ctx, StatusOffline) // steady state
	m.SetStatus(ctx, StatusOnline)  // edge

	if len(notifications) != 2 {
		t.Fatalf("Expected 2 notifications, got %v", notifications)
	}
	if notifications[0] != StatusOffline || notifications[1] != StatusOnline {
		t.Errorf("Unexpected notification order: %v", notifications)
	}
}

func TestMonitor_RunPollsProbe(t *testing.T) {
	var mu sync.Mutex
	online := false
	probe := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		if online {
			return nil
		}
		return errors.New("no route to host")
	}

	drained := make(chan struct{}, 1)
	m := New(func(ctx context.Context) {
		select {
		case drained <- struct{}{}:
		default:
		}
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx, probe, 5*time.Millisecond)

	// Wait for the probe to report offline
	deadline := time.After(time.Second)
	for m.Status() != StatusOffline {
		select {
		case <-deadline:
			t.Fatal("Monitor never observed offline")
		case <-time.After(time.Millisecond):
		}
	}

	mu.Lock()
	online = true
	mu.Unlock()

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("Monitor never drained after reconnect")
	}
	if m.Status() != StatusOnline {
		t.Errorf("Expected online status, got %s", m.Status())
	}
}
