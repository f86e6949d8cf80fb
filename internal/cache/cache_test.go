package cache

import "testing"

func TestMemoDo(t *testing.T) {
	m := NewMemo[int]()
	calls := 0
	compute := func() int { calls++; return 42 }

	if got := m.Do("k", compute); got != 42 {
		t.Fatalf("Do = %d, want 42", got)
	}
	if got := m.Do("k", compute); got != 42 || calls != 1 {
		t.Errorf("second Do = %d after %d calls, want 42 after 1", got, calls)
	}
	if m.Hits() != 1 || m.Len() != 1 {
		t.Errorf("Hits = %d Len = %d, want 1 1", m.Hits(), m.Len())
	}
}

func TestMemoCycle(t *testing.T) {
	m := NewMemo[string]()
	var inner string
	got := m.Do("self", func() string {
		inner = m.Do("self", func() string { return "unreachable" })
		return "outer"
	})
	if got != "outer" || inner != "" {
		t.Errorf("Do = %q inner = %q, want outer and the zero value", got, inner)
	}
}

func TestSessionRenew(t *testing.T) {
	s := NewSession()
	m := NewMemo[int]()
	s.Register(m)
	m.Do("a", func() int { return 1 })

	id := s.ID()
	s.Renew()
	if s.ID() == id {
		t.Errorf("Renew should assign a new id")
	}
	if m.Len() != 0 {
		t.Errorf("Renew should reset registered memos, Len = %d", m.Len())
	}
}
