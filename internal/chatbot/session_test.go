package chatbot

import "testing"

func TestSessionLifecycle(t *testing.T) {
	var s Session
	if s.Active() {
		t.Fatal("new session must be idle")
	}

	s.Start()
	if !s.Active() {
		t.Fatal("session must be collecting after Start")
	}

	s.Add(3)
	s.Add(7)
	s.Add(3) // 允许重复
	if s.Count() != 3 {
		t.Fatalf("unexpected count: %d", s.Count())
	}

	ids := s.Selected()
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 7 || ids[2] != 3 {
		t.Fatalf("unexpected selection: %v", ids)
	}

	// Selected 返回副本，修改不影响内部状态
	ids[0] = 99
	if s.Selected()[0] != 3 {
		t.Fatal("Selected must return a copy")
	}

	s.Reset()
	if s.Active() || s.Count() != 0 {
		t.Fatal("session must be empty and idle after Reset")
	}
}

func TestSessionStartClearsSelection(t *testing.T) {
	var s Session
	s.Start()
	s.Add(1)
	s.Reset()
	s.Start()
	if s.Count() != 0 {
		t.Fatalf("Start must clear prior selection, got %d", s.Count())
	}
}
