// Package resource orchestrates create, edit and delete of drives and
// network interfaces with deferred-apply semantics: changes persist
// immediately and take hypervisor effect at the VM's next restart.
package resource

import (
	"context"

	"github.com/nexusvm/console/internal/domain"
)

// Repository defines the data access interface for VMs and their
// attached resources. PutNic and PutDrive upsert by identity field, the
// same semantics the backend exposes; the hypervisor reconciles desired
// vs applied resource sets at the VM's next boot.
type Repository interface {
	// GetVM retrieves a VM with its current resource collections.
	GetVM(ctx context.Context, id string) (*domain.VM, error)

	// PutNic stores a NIC keyed by its IfaceID.
	PutNic(ctx context.Context, vmID string, nic domain.Nic) error

	// DeleteNic removes the NIC with the given IfaceID.
	DeleteNic(ctx context.Context, vmID, ifaceID string) error

	// PutDrive stores a drive keyed by its DriveID.
	PutDrive(ctx context.Context, vmID string, drive domain.Drive) error

	// DeleteDrive removes the drive with the given DriveID.
	DeleteDrive(ctx context.Context, vmID, driveID string) error
}
