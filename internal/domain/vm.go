package domain

import (
	"time"
)

// VMState represents the power state of a microVM as reported by the backend.
type VMState string

const (
	VMStateNotStarted VMState = "NOT_STARTED"
	VMStateRunning    VMState = "RUNNING"
	VMStatePaused     VMState = "PAUSED"
	VMStateStopped    VMState = "STOPPED"
)

// NormalizeState maps a backend-reported state string onto a known VMState.
// Unrecognized or absent states normalize to Stopped: the most restrictive
// state that still leaves the VM startable.
func NormalizeState(raw string) VMState {
	switch VMState(raw) {
	case VMStateNotStarted, VMStateRunning, VMStatePaused, VMStateStopped:
		return VMState(raw)
	default:
		return VMStateStopped
	}
}

// LifecycleAction is a user-requested operation against a running or stopped VM.
// Actions are stateless values; they are never persisted.
type LifecycleAction string

const (
	ActionStart        LifecycleAction = "Start"
	ActionStop         LifecycleAction = "Stop"
	ActionPause        LifecycleAction = "Pause"
	ActionResume       LifecycleAction = "Resume"
	ActionCtrlAltDel   LifecycleAction = "CtrlAltDel"
	ActionFlushMetrics LifecycleAction = "FlushMetrics"
)

// VM represents a microVM in the control plane.
type VM struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	State  VMState `json:"state"`
	VCPU   int64   `json:"vcpu"`
	MemMiB int64   `json:"mem_mib"`

	// Boot source. Exactly one of image ID or host path is set per
	// artifact; both absent is invalid at submission time.
	KernelImageID string `json:"kernel_image_id,omitempty"`
	KernelPath    string `json:"kernel_path,omitempty"`
	RootfsImageID string `json:"rootfs_image_id,omitempty"`
	RootfsPath    string `json:"rootfs_path,omitempty"`
	BootArgs      string `json:"boot_args,omitempty"`

	// Tap is the host-side base interface name for this VM.
	Tap string `json:"tap"`

	NICs   []Nic   `json:"nics"`
	Drives []Drive `json:"drives"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRunning returns true if the VM is in the Running state.
func (vm *VM) IsRunning() bool {
	return vm.State == VMStateRunning
}

// IsStopped returns true if the VM is stopped or was never started.
// Resource changes on such a VM take effect immediately at the next boot
// rather than requiring a restart.
func (vm *VM) IsStopped() bool {
	return vm.State == VMStateStopped || vm.State == VMStateNotStarted
}

// InterfaceIDs returns the IDs of all attached network interfaces.
func (vm *VM) InterfaceIDs() []string {
	ids := make([]string, 0, len(vm.NICs))
	for _, nic := range vm.NICs {
		ids = append(ids, nic.IfaceID)
	}
	return ids
}

// HostDevNames returns the host device names of all attached interfaces.
func (vm *VM) HostDevNames() []string {
	names := make([]string, 0, len(vm.NICs))
	for _, nic := range vm.NICs {
		names = append(names, nic.HostDevName)
	}
	return names
}

// Image is a kernel or rootfs image known to the image registry.
type Image struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      ImageKind `json:"kind"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageKind distinguishes kernel images from root filesystems.
type ImageKind string

const (
	ImageKindKernel ImageKind = "KERNEL"
	ImageKindRootfs ImageKind = "ROOTFS"
)

// Snapshot is a pre-booted VM state stored by the backend. The console
// only ever reads these records; snapshot mechanics are a backend concern.
type Snapshot struct {
	ID        string    `json:"id"`
	VMID      string    `json:"vm_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
