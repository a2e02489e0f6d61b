package lifecycle

import (
	"testing"

	"github.com/nexusvm/console/internal/domain"
)

func TestIsAllowed_FullTable(t *testing.T) {
	states := []domain.VMState{
		domain.VMStateNotStarted,
		domain.VMStateStopped,
		domain.VMStateRunning,
		domain.VMStatePaused,
	}
	actions := []domain.LifecycleAction{
		domain.ActionStart,
		domain.ActionStop,
		domain.ActionPause,
		domain.ActionResume,
		domain.ActionCtrlAltDel,
		domain.ActionFlushMetrics,
	}

	// Expected permissions, rows in the order of states above.
	expected := map[domain.VMState]map[domain.LifecycleAction]bool{
		domain.VMStateNotStarted: {domain.ActionStart: true},
		domain.VMStateStopped:    {domain.ActionStart: true},
		domain.VMStateRunning: {
			domain.ActionStop:         true,
			domain.ActionPause:        true,
			domain.ActionCtrlAltDel:   true,
			domain.ActionFlushMetrics: true,
		},
		domain.VMStatePaused: {domain.ActionResume: true},
	}

	for _, state := range states {
		for _, action := range actions {
			got := IsAllowed(state, action)
			want := expected[state][action]
			if got != want {
				t.Errorf("IsAllowed(%s, %s) = %v, want %v", state, action, got, want)
			}
		}
	}
}

func TestIsAllowed_StoppedScenario(t *testing.T) {
	if !IsAllowed(domain.VMStateStopped, domain.ActionStart) {
		t.Error("Expected Start to be allowed from Stopped")
	}
	if IsAllowed(domain.VMStateStopped, domain.ActionPause) {
		t.Error("Expected Pause to be disallowed from Stopped")
	}
}

func TestIsAllowed_UnknownStateTreatedAsStopped(t *testing.T) {
	for _, raw := range []string{"", "SUSPENDED", "running", "garbage"} {
		state := domain.VMState(raw)
		if !IsAllowed(state, domain.ActionStart) {
			t.Errorf("Expected Start allowed for unknown state %q", raw)
		}
		if IsAllowed(state, domain.ActionStop) {
			t.Errorf("Expected Stop disallowed for unknown state %q", raw)
		}
	}
}

func TestAllowedActions_Running(t *testing.T) {
	actions := AllowedActions(domain.VMStateRunning)
	if len(actions) != 4 {
		t.Fatalf("Expected 4 allowed actions for Running, got %d", len(actions))
	}
	for _, a := range actions {
		if a == domain.ActionStart || a == domain.ActionResume {
			t.Errorf("Action %s should not be allowed while Running", a)
		}
	}
}
