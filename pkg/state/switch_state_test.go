package state

import "testing"

func TestSwitchStateModify(t *testing.T) {
	s := NewSwitchState()

	w := s.Modify()
	if w.State() != s {
		t.Fatal("Modify() on an unpublished root should return the root itself")
	}

	s.Publish()
	if !s.Ports().IsPublished() || !s.ControlPlane().IsPublished() {
		t.Error("Publish() should freeze every child")
	}

	w = s.Modify()
	next := w.State()
	if next == s {
		t.Fatal("Modify() on a published root should clone it")
	}
	if next.Generation() != s.Generation()+1 {
		t.Errorf("Generation() = %d, want %d", next.Generation(), s.Generation()+1)
	}
	if next.Vlans() != s.Vlans() {
		t.Error("clone should share children")
	}

	vlans, _ := s.Vlans().CloneWith(vlanNodes(1))
	w.SetVlans(vlans)
	if s.Vlans().Len() != 0 {
		t.Error("published root changed through its clone")
	}
}

func TestWritableStatePanicsAfterPublish(t *testing.T) {
	s := NewSwitchState()
	w := s.Modify()
	s.Publish()

	defer func() {
		if recover() == nil {
			t.Error("setting a child on a published root should panic")
		}
	}()
	w.SetScalars(Scalars{DefaultVlan: 1})
}
