package events

import "testing"

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Subscribe(EnvironmentChanged, func() { order = append(order, 1) })
	bus.Subscribe(EnvironmentChanged, func() { order = append(order, 2) })
	bus.Subscribe(EnvironmentChanged, func() { order = append(order, 3) })

	bus.Publish(EnvironmentChanged)

	if len(order) != 3 {
		t.Fatalf("Expected 3 deliveries, got %d", len(order))
	}
	for i, v := range order {
		if v != i+1 {
			t.Errorf("Expected delivery %d at position %d, got %d", i+1, i, v)
		}
	}
}

func TestBus_SignalsAreIndependent(t *testing.T) {
	bus := NewBus()

	envCount := 0
	userCount := 0
	bus.Subscribe(EnvironmentChanged, func() { envCount++ })
	bus.Subscribe(UserProfileChanged, func() { userCount++ })

	bus.Publish(EnvironmentChanged)
	bus.Publish(EnvironmentChanged)

	if envCount != 2 {
		t.Errorf("Expected 2 environment-changed deliveries, got %d", envCount)
	}
	if userCount != 0 {
		t.Errorf("Expected 0 user-profile-changed deliveries, got %d", userCount)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	unsub := bus.Subscribe(SettingsChanged, func() { count++ })

	bus.Publish(SettingsChanged)
	unsub()
	bus.Publish(SettingsChanged)

	if count != 1 {
		t.Errorf("Expected 1 delivery after unsubscribe, got %d", count)
	}

	// Double unsubscribe is a no-op
	unsub()
	bus.Publish(SettingsChanged)
	if count != 1 {
		t.Errorf("Expected count to stay at 1, got %d", count)
	}
}

func TestBus_SubscribeDuringPublishTakesEffectNextTime(t *testing.T) {
	bus := NewBus()

	lateCount := 0
	bus.Subscribe(EnvironmentChanged, func() {
		bus.Subscribe(EnvironmentChanged, func() { lateCount++ })
	})

	bus.Publish(EnvironmentChanged)
	if lateCount != 0 {
		t.Errorf("Late subscriber should not run during the publish that added it, got %d", lateCount)
	}

	bus.Publish(EnvironmentChanged)
	if lateCount != 1 {
		t.Errorf("Expected late subscriber to run once on next publish, got %d", lateCount)
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic
	bus.Publish(UserProfileChanged)
}
