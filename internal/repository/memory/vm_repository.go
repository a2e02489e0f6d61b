// Package memory provides in-memory repository implementations for
// development and testing. Data is not persistent across restarts.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexusvm/console/internal/domain"
	"github.com/nexusvm/console/internal/services/resource"
)

// Ensure VMRepository implements resource.Repository
var _ resource.Repository = (*VMRepository)(nil)

// VMRepository is an in-memory implementation of the VM and resource
// repository.
type VMRepository struct {
	mu   sync.RWMutex
	data map[string]*domain.VM
}

// NewVMRepository creates a new in-memory VM repository.
func NewVMRepository() *VMRepository {
	return &VMRepository{
		data: make(map[string]*domain.VM),
	}
}

// CreateVM stores a new VM. An empty ID is generated, and an empty tap
// base defaults to tap-<id prefix> within the host interface name limit.
func (r *VMRepository) CreateVM(ctx context.Context, vm *domain.VM) (*domain.VM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vm.ID == "" {
		vm.ID = uuid.New().String()
	}

	for _, existing := range r.data {
		if strings.EqualFold(existing.Name, vm.Name) {
			return nil, domain.ErrConflict
		}
	}

	if vm.Tap == "" {
		vm.Tap = "tap-" + vm.ID[:8]
	}
	if vm.State == "" {
		vm.State = domain.VMStateNotStarted
	}

	now := time.Now()
	if vm.CreatedAt.IsZero() {
		vm.CreatedAt = now
	}
	vm.UpdatedAt = now

	stored := cloneVM(vm)
	r.data[stored.ID] = stored

	return cloneVM(stored), nil
}

// GetVM retrieves a VM by ID with its resource collections.
func (r *VMRepository) GetVM(ctx context.Context, id string) (*domain.VM, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vm, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return cloneVM(vm), nil
}

// ListVMs returns all VMs, most recently created first.
func (r *VMRepository) ListVMs(ctx context.Context) ([]*domain.VM, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.VM
	for _, vm := range r.data {
		result = append(result, cloneVM(vm))
	}
	sortVMsByCreatedAt(result)

	return result, nil
}

// UpdateState records a backend-reported state transition.
func (r *VMRepository) UpdateState(ctx context.Context, id string, state domain.VMState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vm, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}

	vm.State = domain.NormalizeState(string(state))
	vm.UpdatedAt = time.Now()
	return nil
}

// DeleteVM removes a VM by ID.
func (r *VMRepository) DeleteVM(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}

	delete(r.data, id)
	return nil
}

// PutNic stores a NIC keyed by IfaceID, replacing any existing entry.
func (r *VMRepository) PutNic(ctx context.Context, vmID string, nic domain.Nic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vm, ok := r.data[vmID]
	if !ok {
		return domain.ErrNotFound
	}

	for i := range vm.NICs {
		if strings.EqualFold(vm.NICs[i].IfaceID, nic.IfaceID) {
			vm.NICs[i] = nic
			vm.UpdatedAt = time.Now()
			return nil
		}
	}
	vm.NICs = append(vm.NICs, nic)
	vm.UpdatedAt = time.Now()
	return nil
}

// DeleteNic removes the NIC with the given IfaceID.
func (r *VMRepository) DeleteNic(ctx context.Context, vmID, ifaceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vm, ok := r.data[vmID]
	if !ok {
		return domain.ErrNotFound
	}

	for i := range vm.NICs {
		if strings.EqualFold(vm.NICs[i].IfaceID, ifaceID) {
			vm.NICs = append(vm.NICs[:i], vm.NICs[i+1:]...)
			vm.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

// PutDrive stores a drive keyed by DriveID, replacing any existing entry.
func (r *VMRepository) PutDrive(ctx context.Context, vmID string, drive domain.Drive) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vm, ok := r.data[vmID]
	if !ok {
		return domain.ErrNotFound
	}

	for i := range vm.Drives {
		if strings.EqualFold(vm.Drives[i].DriveID, drive.DriveID) {
			vm.Drives[i] = drive
			vm.UpdatedAt = time.Now()
			return nil
		}
	}
	vm.Drives = append(vm.Drives, drive)
	vm.UpdatedAt = time.Now()
	return nil
}

// DeleteDrive removes the drive with the given DriveID.
func (r *VMRepository) DeleteDrive(ctx context.Context, vmID, driveID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vm, ok := r.data[vmID]
	if !ok {
		return domain.ErrNotFound
	}

	for i := range vm.Drives {
		if strings.EqualFold(vm.Drives[i].DriveID, driveID) {
			vm.Drives = append(vm.Drives[:i], vm.Drives[i+1:]...)
			vm.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

// ============================================================================
// Helper Functions
// ============================================================================

// cloneVM creates a deep copy of a VM to prevent external mutations.
func cloneVM(vm *domain.VM) *domain.VM {
	if vm == nil {
		return nil
	}

	clone := *vm
	clone.NICs = append([]domain.Nic(nil), vm.NICs...)
	clone.Drives = append([]domain.Drive(nil), vm.Drives...)
	return &clone
}

// sortVMsByCreatedAt sorts VMs by creation time, most recent first.
func sortVMsByCreatedAt(vms []*domain.VM) {
	for i := 0; i < len(vms); i++ {
		for j := i + 1; j < len(vms); j++ {
			if vms[j].CreatedAt.After(vms[i].CreatedAt) {
				vms[i], vms[j] = vms[j], vms[i]
			}
		}
	}
}
