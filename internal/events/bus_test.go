// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package events_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/qol-tools/qol-tray/internal/events"
)

func receive(t *testing.T, sub *events.Subscription) events.Event {
	t.Helper()
	select {
	case e, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return events.Event{}
	}
}

func assertEmpty(t *testing.T, sub *events.Subscription) {
	t.Helper()
	select {
	case e := <-sub.C():
		t.Fatalf("unexpected event %s", e.Type)
	default:
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := events.NewBus()
	assert.NotPanics(t, func() {
		assert.Equal(t, 0, bus.Publish(events.PluginsChanged()))
	})
}

func TestBus_SingleSubscriberReceivesEvent(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	defer sub.Close()

	sent := events.PluginsChanged()
	assert.Equal(t, 1, bus.Publish(sent))

	got := receive(t, sub)
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, events.TypePluginsChanged, got.Type)
}

func TestBus_MultipleSubscribersReceiveSameOrder(t *testing.T) {
	bus := events.NewBus()
	subs := []*events.Subscription{bus.Subscribe(), bus.Subscribe(), bus.Subscribe()}

	sent := []events.Event{
		events.DiscoveryStarted(),
		events.DiscoveryComplete(nil),
		events.PluginsChanged(),
	}
	for _, e := range sent {
		bus.Publish(e)
	}

	for _, sub := range subs {
		for _, want := range sent {
			assert.Equal(t, want.ID, receive(t, sub).ID)
		}
		sub.Close()
	}
}

func TestBus_LateSubscriberMissesEarlierEvents(t *testing.T) {
	bus := events.NewBus()
	early := events.PluginsChanged()
	bus.Publish(early)

	sub := bus.Subscribe()
	defer sub.Close()

	later := events.HotkeysReloaded(2)
	bus.Publish(later)

	assert.Equal(t, later.ID, receive(t, sub).ID)
	assertEmpty(t, sub)
}

func TestBus_LaggingSubscriberLosesOldest(t *testing.T) {
	bus := events.NewBus(events.WithCapacity(4))
	sub := bus.Subscribe()
	defer sub.Close()

	var sent []events.Event
	for i := range 10 {
		e := events.HotkeysReloaded(i)
		sent = append(sent, e)
		bus.Publish(e)
	}

	assert.Equal(t, uint64(6), sub.Lagged())
	for _, want := range sent[6:] {
		assert.Equal(t, want.Count, receive(t, sub).Count)
	}
	assertEmpty(t, sub)
}

func TestBus_PublishDoesNotBlockOnStalledSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.NewBus(events.WithCapacity(1))
	stalled := bus.Subscribe()
	defer stalled.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 1000 {
			bus.Publish(events.PluginsChanged())
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked by stalled subscriber")
	}
}

func TestBus_ConcurrentPublishers(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.NewBus(events.WithCapacity(256))
	sub := bus.Subscribe()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				bus.Publish(events.PluginsChanged())
			}
		}()
	}
	wg.Wait()

	assert.Len(t, sub.C(), 200)
	assert.Zero(t, sub.Lagged())
	sub.Close()
}

func TestSubscription_CloseDetaches(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	require.Equal(t, 1, bus.SubscriberCount())

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, bus.SubscriberCount())
	_, ok := <-sub.C()
	assert.False(t, ok, "channel should be closed")
	assert.Equal(t, 0, bus.Publish(events.PluginsChanged()))
}
