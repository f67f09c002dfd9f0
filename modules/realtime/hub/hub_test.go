package hub

import (
	"testing"

	"roomdisplay/core/constants"
)

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	h := New()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a.ID)
	defer h.Unsubscribe(b.ID)

	h.Publish(Event{Name: EventWiFiUpdated, Payload: "guest-net"})

	for _, sub := range []*Subscriber{a, b} {
		select {
		case ev := <-sub.C():
			if ev.Name != EventWiFiUpdated {
				t.Fatalf("event = %s, want %s", ev.Name, EventWiFiUpdated)
			}
		default:
			t.Fatalf("subscriber %s received nothing", sub.ID)
		}
	}
}

func TestLateSubscriberSeesNoReplay(t *testing.T) {
	h := New()
	h.Publish(Event{Name: EventRoomStatuses})

	sub := h.Subscribe()
	defer h.Unsubscribe(sub.ID)

	select {
	case ev := <-sub.C():
		t.Fatalf("late subscriber received replayed event %s", ev.Name)
	default:
	}
}

func TestUnsubscribeIsSilentForOthers(t *testing.T) {
	h := New()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(b.ID)

	h.Unsubscribe(a.ID)
	// Double unsubscribe must not panic.
	h.Unsubscribe(a.ID)

	if _, open := <-a.C(); open {
		t.Fatal("unsubscribed channel should be closed")
	}

	h.Publish(Event{Name: EventSidebarUpdated})
	select {
	case ev := <-b.C():
		if ev.Name != EventSidebarUpdated {
			t.Fatalf("event = %s, want %s", ev.Name, EventSidebarUpdated)
		}
	default:
		t.Fatal("remaining subscriber received nothing")
	}

	if h.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d, want 1", h.SubscriberCount())
	}
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := New()
	slow := h.Subscribe()
	fast := h.Subscribe()
	defer h.Unsubscribe(fast.ID)

	// Fill the slow subscriber's buffer without reading, then publish once
	// more; the overflowing publish evicts it.
	for i := 0; i <= constants.SubscriberBuffer; i++ {
		h.Publish(Event{Name: EventRoomStatuses})
		for len(fast.C()) > 0 {
			<-fast.C()
		}
	}

	if h.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d, want 1 after eviction", h.SubscriberCount())
	}

	// Drain the evicted channel; it must end closed.
	open := true
	for open {
		_, open = <-slow.C()
	}
}

func TestSubscribeHookFiresEveryTime(t *testing.T) {
	h := New()
	calls := 0
	h.OnFirstSubscribe(func() { calls++ })

	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a.ID)
	defer h.Unsubscribe(b.ID)

	// The hook itself fires per subscription; idempotence lives in the
	// callee, not the hub.
	if calls != 2 {
		t.Fatalf("hook calls = %d, want 2", calls)
	}
}
