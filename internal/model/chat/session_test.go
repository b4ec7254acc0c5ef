package chat

import (
	"testing"
	"time"
)

func TestNewSessionStartsInGreeting(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession("abc", now)
	if s.State != StateGreeting {
		t.Fatalf("expected greeting, got %s", s.State)
	}
	if !s.State.Valid() {
		t.Fatal("initial state must be valid")
	}
	if len(s.Context) != 0 || len(s.History) != 0 {
		t.Fatal("expected empty context and history")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSession("abc", time.Now())
	s.Context[SlotCity] = "Delhi"
	s.History = append(s.History, Turn{User: "hi"})

	c := s.Clone()
	c.Context[SlotCity] = "Bangalore"
	c.History[0].User = "changed"

	if s.Context[SlotCity] != "Delhi" {
		t.Fatalf("clone shares context map")
	}
	if s.History[0].User != "hi" {
		t.Fatalf("clone shares history slice")
	}
}

func TestStateValid(t *testing.T) {
	for _, st := range States() {
		if !st.Valid() {
			t.Fatalf("state %s should be valid", st)
		}
	}
	if State("response").Valid() {
		t.Fatal("unknown state reported valid")
	}
	if !StateGoodbye.Terminal() || StateFAQ.Terminal() {
		t.Fatal("only goodbye is terminal")
	}
}

func TestAppendTurnAndSetSlot(t *testing.T) {
	s := NewSession("abc", time.Now())
	turn := s.AppendTurn("hi", "hello", time.Now())
	if turn.ID == "" || len(s.History) != 1 {
		t.Fatalf("expected recorded turn with id, got %+v", s.History)
	}

	if !s.SetSlot(SlotCity, "Delhi") {
		t.Fatal("expected slot to be set")
	}
	if s.SetSlot(SlotCity, "") {
		t.Fatal("empty value must not overwrite a slot")
	}
	if v, _ := s.Slot(SlotCity); v != "Delhi" {
		t.Fatalf("unexpected city %q", v)
	}
}
