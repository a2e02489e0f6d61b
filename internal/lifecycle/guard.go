// Package lifecycle gates VM lifecycle actions on the current power state.
package lifecycle

import (
	"github.com/nexusvm/console/internal/domain"
)

// allowed is the state -> permitted-actions table. CtrlAltDel and
// FlushMetrics are signals to a running VM, not transitions: they never
// produce a new state.
var allowed = map[domain.VMState]map[domain.LifecycleAction]bool{
	domain.VMStateNotStarted: {
		domain.ActionStart: true,
	},
	domain.VMStateStopped: {
		domain.ActionStart: true,
	},
	domain.VMStateRunning: {
		domain.ActionStop:         true,
		domain.ActionPause:        true,
		domain.ActionCtrlAltDel:   true,
		domain.ActionFlushMetrics: true,
	},
	domain.VMStatePaused: {
		domain.ActionResume: true,
	},
}

// IsAllowed reports whether action may be requested while the VM is in
// state. The guard is advisory: the authoritative transition is the
// backend's subsequent state report. Unknown states are normalized to
// Stopped first, so VMs with absent or unrecognized states stay startable.
func IsAllowed(state domain.VMState, action domain.LifecycleAction) bool {
	if _, known := allowed[state]; !known {
		state = domain.NormalizeState(string(state))
	}
	return allowed[state][action]
}

// AllowedActions returns every action permitted in state, in a fixed order.
// Useful for enabling and disabling UI affordances in one pass.
func AllowedActions(state domain.VMState) []domain.LifecycleAction {
	all := []domain.LifecycleAction{
		domain.ActionStart,
		domain.ActionStop,
		domain.ActionPause,
		domain.ActionResume,
		domain.ActionCtrlAltDel,
		domain.ActionFlushMetrics,
	}
	var out []domain.LifecycleAction
	for _, a := range all {
		if IsAllowed(state, a) {
			out = append(out, a)
		}
	}
	return out
}
