package resource

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nexusvm/console/internal/alloc"
	"github.com/nexusvm/console/internal/domain"
)

// Service implements the resource workflow for NICs and drives.
//
// Creation is never blocked by VM state: resources persist immediately
// and the hypervisor applies them at the next restart. The only
// state-dependent behavior is the AppliesOnRestart flag on results,
// which the UI renders as a banner.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new resource workflow service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.Named("resource-service"),
	}
}

// NicDraft is the caller's input for NIC creation. Empty identity fields
// are filled by the allocator.
type NicDraft struct {
	IfaceID           string
	HostDevName       string
	GuestMAC          string
	AllowMMDSRequests bool
	RxRateLimiter     domain.RateLimiter
	TxRateLimiter     domain.RateLimiter
}

// NicResult is the outcome of a NIC creation.
type NicResult struct {
	Nic domain.Nic
	// AppliesOnRestart is set when the VM is not stopped: the change is
	// persisted but takes effect only at the next restart.
	AppliesOnRestart bool
	// HostDevNameFallback is set when the name allocator exhausted its
	// search and fell back to the truncated tap base, which may collide
	// with an existing device name.
	HostDevNameFallback bool
}

// CreateNic validates the draft, fills omitted identity fields from the
// allocator, and persists the interface.
func (s *Service) CreateNic(ctx context.Context, vmID string, draft NicDraft) (*NicResult, error) {
	const op = "create network interface"
	logger := s.logger.With(
		zap.String("method", "CreateNic"),
		zap.String("vm_id", vmID),
	)

	vm, err := s.repo.GetVM(ctx, vmID)
	if err != nil {
		logger.Error("Failed to load VM", zap.Error(err))
		return nil, domain.NewOperationError(op, err)
	}

	nic := domain.Nic{
		IfaceID:           strings.TrimSpace(draft.IfaceID),
		HostDevName:       strings.TrimSpace(draft.HostDevName),
		GuestMAC:          strings.TrimSpace(draft.GuestMAC),
		AllowMMDSRequests: draft.AllowMMDSRequests,
		RxRateLimiter:     draft.RxRateLimiter,
		TxRateLimiter:     draft.TxRateLimiter,
	}

	// Caller-supplied identity fields are validated for uniqueness;
	// omitted ones are allocated collision-free.
	if nic.IfaceID == "" {
		nic.IfaceID = alloc.NextInterfaceID(vm.InterfaceIDs())
	} else {
		if strings.EqualFold(nic.IfaceID, alloc.ReservedIfaceID) {
			return nil, domain.NewOperationError(op,
				fmt.Errorf("%w: interface ID %q is reserved", domain.ErrValidationFailed, alloc.ReservedIfaceID))
		}
		if containsFold(vm.InterfaceIDs(), nic.IfaceID) {
			return nil, domain.NewOperationError(op,
				fmt.Errorf("%w: interface ID %q already in use", domain.ErrConflict, nic.IfaceID))
		}
	}

	fallback := false
	if nic.HostDevName == "" {
		allocated := alloc.NextHostDevName(vm.Tap, nic.IfaceID, vm.HostDevNames())
		nic.HostDevName = allocated.Name
		fallback = allocated.Fallback
		if fallback {
			logger.Warn("Host device name search exhausted, using tap base",
				zap.String("host_dev_name", nic.HostDevName),
			)
		}
	} else {
		if len(nic.HostDevName) > alloc.MaxHostDevNameLen {
			return nil, domain.NewOperationError(op,
				fmt.Errorf("%w: host device name %q exceeds %d characters", domain.ErrValidationFailed, nic.HostDevName, alloc.MaxHostDevNameLen))
		}
		if containsFold(vm.HostDevNames(), nic.HostDevName) {
			return nil, domain.NewOperationError(op,
				fmt.Errorf("%w: host device name %q already in use", domain.ErrConflict, nic.HostDevName))
		}
	}

	if nic.GuestMAC == "" {
		nic.GuestMAC = alloc.GenerateMAC()
	}

	if err := s.repo.PutNic(ctx, vmID, nic); err != nil {
		logger.Error("Failed to persist NIC", zap.Error(err))
		return nil, domain.NewOperationError(op, err)
	}

	logger.Info("NIC created",
		zap.String("iface_id", nic.IfaceID),
		zap.String("host_dev_name", nic.HostDevName),
		zap.Bool("applies_on_restart", !vm.IsStopped()),
	)

	return &NicResult{
		Nic:                 nic,
		AppliesOnRestart:    !vm.IsStopped(),
		HostDevNameFallback: fallback,
	}, nil
}

// UpdateNicRateLimit edits a NIC's rate limiters. Identity fields are
// immutable after creation; this is the only post-creation edit mode.
func (s *Service) UpdateNicRateLimit(ctx context.Context, vmID, ifaceID string, rx, tx domain.RateLimiter) (*NicResult, error) {
	const op = "update interface rate limit"
	logger := s.logger.With(
		zap.String("method", "UpdateNicRateLimit"),
		zap.String("vm_id", vmID),
		zap.String("iface_id", ifaceID),
	)

	vm, err := s.repo.GetVM(ctx, vmID)
	if err != nil {
		return nil, domain.NewOperationError(op, err)
	}

	var nic *domain.Nic
	for i := range vm.NICs {
		if strings.EqualFold(vm.NICs[i].IfaceID, ifaceID) {
			nic = &vm.NICs[i]
			break
		}
	}
	if nic == nil {
		return nil, domain.NewOperationError(op,
			fmt.Errorf("%w: interface %q", domain.ErrNotFound, ifaceID))
	}

	nic.RxRateLimiter = rx
	nic.TxRateLimiter = tx

	if err := s.repo.PutNic(ctx, vmID, *nic); err != nil {
		logger.Error("Failed to persist rate limit change", zap.Error(err))
		return nil, domain.NewOperationError(op, err)
	}

	logger.Info("NIC rate limiters updated")
	return &NicResult{Nic: *nic, AppliesOnRestart: !vm.IsStopped()}, nil
}

// DeleteNic removes an interface. Always permitted; the hypervisor drops
// the device at the next restart.
func (s *Service) DeleteNic(ctx context.Context, vmID, ifaceID string) error {
	const op = "delete network interface"
	logger := s.logger.With(
		zap.String("method", "DeleteNic"),
		zap.String("vm_id", vmID),
		zap.String("iface_id", ifaceID),
	)

	if err := s.repo.DeleteNic(ctx, vmID, ifaceID); err != nil {
		logger.Error("Failed to delete NIC", zap.Error(err))
		return domain.NewOperationError(op, err)
	}
	logger.Info("NIC deleted")
	return nil
}

// DriveDraft is the caller's input for drive creation. Mode selects
// between auto-provisioning (SizeBytes) and attaching an existing host
// file (PathOnHost); the two are mutually exclusive.
type DriveDraft struct {
	DriveID      string
	Mode         domain.DriveMode
	PathOnHost   string
	SizeBytes    int64
	IsRootDevice bool
	IsReadOnly   bool
	RateLimiter  domain.RateLimiter
}

// DriveResult is the outcome of a drive creation.
type DriveResult struct {
	Drive            domain.Drive
	AppliesOnRestart bool
}

// CreateDrive validates the draft and persists the drive.
func (s *Service) CreateDrive(ctx context.Context, vmID string, draft DriveDraft) (*DriveResult, error) {
	const op = "create drive"
	logger := s.logger.With(
		zap.String("method", "CreateDrive"),
		zap.String("vm_id", vmID),
	)

	// Mode validation happens before any backend round-trip.
	drive := domain.Drive{
		DriveID:      strings.TrimSpace(draft.DriveID),
		IsRootDevice: draft.IsRootDevice,
		IsReadOnly:   draft.IsReadOnly,
		RateLimiter:  draft.RateLimiter,
	}
	switch draft.Mode {
	case domain.DriveModeManual:
		path := strings.TrimSpace(draft.PathOnHost)
		if path == "" {
			return nil, domain.NewOperationError(op,
				fmt.Errorf("%w: manual drive requires a host path", domain.ErrValidationFailed))
		}
		drive.PathOnHost = path
	case domain.DriveModeAuto:
		if draft.SizeBytes <= 0 {
			return nil, domain.NewOperationError(op,
				fmt.Errorf("%w: auto-provisioned drive requires a positive size", domain.ErrValidationFailed))
		}
		drive.SizeBytes = draft.SizeBytes
	default:
		return nil, domain.NewOperationError(op,
			fmt.Errorf("%w: unknown drive mode %q", domain.ErrValidationFailed, draft.Mode))
	}

	vm, err := s.repo.GetVM(ctx, vmID)
	if err != nil {
		logger.Error("Failed to load VM", zap.Error(err))
		return nil, domain.NewOperationError(op, err)
	}

	if drive.DriveID == "" {
		drive.DriveID = nextDriveID(vm.Drives)
	} else {
		for _, existing := range vm.Drives {
			if strings.EqualFold(existing.DriveID, drive.DriveID) {
				return nil, domain.NewOperationError(op,
					fmt.Errorf("%w: drive ID %q already in use", domain.ErrConflict, drive.DriveID))
			}
		}
	}

	if err := s.repo.PutDrive(ctx, vmID, drive); err != nil {
		logger.Error("Failed to persist drive", zap.Error(err))
		return nil, domain.NewOperationError(op, err)
	}

	logger.Info("Drive created",
		zap.String("drive_id", drive.DriveID),
		zap.Bool("applies_on_restart", !vm.IsStopped()),
	)

	return &DriveResult{Drive: drive, AppliesOnRestart: !vm.IsStopped()}, nil
}

// UpdateDriveRateLimit edits a drive's rate limiter. DriveID, root and
// read-only flags are immutable after creation.
func (s *Service) UpdateDriveRateLimit(ctx context.Context, vmID, driveID string, limiter domain.RateLimiter) (*DriveResult, error) {
	const op = "update drive rate limit"
	logger := s.logger.With(
		zap.String("method", "UpdateDriveRateLimit"),
		zap.String("vm_id", vmID),
		zap.String("drive_id", driveID),
	)

	vm, err := s.repo.GetVM(ctx, vmID)
	if err != nil {
		return nil, domain.NewOperationError(op, err)
	}

	var drive *domain.Drive
	for i := range vm.Drives {
		if strings.EqualFold(vm.Drives[i].DriveID, driveID) {
			drive = &vm.Drives[i]
			break
		}
	}
	if drive == nil {
		return nil, domain.NewOperationError(op,
			fmt.Errorf("%w: drive %q", domain.ErrNotFound, driveID))
	}

	drive.RateLimiter = limiter

	if err := s.repo.PutDrive(ctx, vmID, *drive); err != nil {
		logger.Error("Failed to persist rate limit change", zap.Error(err))
		return nil, domain.NewOperationError(op, err)
	}

	logger.Info("Drive rate limiter updated")
	return &DriveResult{Drive: *drive, AppliesOnRestart: !vm.IsStopped()}, nil
}

// DeleteDrive removes a drive. Always permitted, deferred apply.
func (s *Service) DeleteDrive(ctx context.Context, vmID, driveID string) error {
	const op = "delete drive"
	logger := s.logger.With(
		zap.String("method", "DeleteDrive"),
		zap.String("vm_id", vmID),
		zap.String("drive_id", driveID),
	)

	if err := s.repo.DeleteDrive(ctx, vmID, driveID); err != nil {
		logger.Error("Failed to delete drive", zap.Error(err))
		return domain.NewOperationError(op, err)
	}
	logger.Info("Drive deleted")
	return nil
}

// nextDriveID returns the first free drive<N> ID. drive0 is conventionally
// the root device.
func nextDriveID(existing []domain.Drive) string {
	used := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		used[strings.ToLower(d.DriveID)] = struct{}{}
	}
	for n := 0; ; n++ {
		candidate := fmt.Sprintf("drive%d", n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// containsFold reports whether values contains s case-insensitively.
func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
