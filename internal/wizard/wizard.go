// Package wizard runs the multi-step VM-creation form: ordered steps,
// per-step validation gates, and a whole-draft check at submission.
package wizard

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/nexusvm/console/internal/domain"
)

// Validation constants
const (
	MaxNameLength = 64
	MinVCPU       = 1
	MaxVCPU       = 32
	MinMemMiB     = 128
	MaxMemMiB     = 65536 // 64 GiB
	MaxTapBaseLen = 15
)

// ValidNameRegex validates VM names (must start with a letter).
var ValidNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidTapRegex validates host interface base names.
var ValidTapRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidationError represents a validation error with field context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrValidationFailed
}

// Step indexes into the wizard's ordered step list.
type Step int

const (
	StepBasicInfo Step = iota
	StepCredentials
	StepMachineConfig
	StepBootSource
	StepNetwork
	StepReview

	stepCount
)

// String returns the step's display name.
func (s Step) String() string {
	switch s {
	case StepBasicInfo:
		return "basic info"
	case StepCredentials:
		return "credentials"
	case StepMachineConfig:
		return "machine config"
	case StepBootSource:
		return "boot source"
	case StepNetwork:
		return "network"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// ImageRegistry lists available kernel/rootfs images. The wizard only
// reads it, for default image selection.
type ImageRegistry interface {
	ListImages(ctx context.Context, kind domain.ImageKind) ([]domain.Image, error)
}

// Wizard owns the draft and the current step. State is held here
// explicitly; there are no ambient globals.
type Wizard struct {
	draft  Draft
	step   Step
	images ImageRegistry
	logger *zap.Logger
}

// New creates a wizard positioned at the first step.
func New(images ImageRegistry, logger *zap.Logger) *Wizard {
	return &Wizard{
		draft: Draft{
			VCPU:   1,
			MemMiB: 512,
		},
		images: images,
		logger: logger.Named("wizard"),
	}
}

// Draft returns a pointer to the draft for field edits. Boot-source
// fields should be changed through the Set* methods to keep the
// image-vs-path exclusivity invariant.
func (w *Wizard) Draft() *Draft {
	return &w.draft
}

// CurrentStep returns the step the wizard is on.
func (w *Wizard) CurrentStep() Step {
	return w.step
}

// ApplyImageDefaults picks the first available kernel and rootfs image
// when the draft has no boot source selected at all. Registry failures
// are non-fatal: the user can still enter paths by hand.
func (w *Wizard) ApplyImageDefaults(ctx context.Context) {
	if w.draft.KernelImageID == "" && w.draft.KernelPath == "" {
		if imgs, err := w.images.ListImages(ctx, domain.ImageKindKernel); err == nil && len(imgs) > 0 {
			w.draft.SetKernelImage(imgs[0].ID)
		} else if err != nil {
			w.logger.Warn("Kernel image listing failed, no default selected", zap.Error(err))
		}
	}
	if w.draft.RootfsImageID == "" && w.draft.RootfsPath == "" {
		if imgs, err := w.images.ListImages(ctx, domain.ImageKindRootfs); err == nil && len(imgs) > 0 {
			w.draft.SetRootfsImage(imgs[0].ID)
		} else if err != nil {
			w.logger.Warn("Rootfs image listing failed, no default selected", zap.Error(err))
		}
	}
}

// ValidateStep runs the schema for one step against the full current
// draft snapshot, so cross-step defaults remain visible.
func (w *Wizard) ValidateStep(step Step) error {
	switch step {
	case StepBasicInfo:
		return validateBasicInfo(&w.draft)
	case StepCredentials:
		return validateCredentials(&w.draft)
	case StepMachineConfig:
		return validateMachineConfig(&w.draft)
	case StepBootSource:
		return validateBootSource(&w.draft)
	case StepNetwork:
		return validateNetwork(&w.draft)
	case StepReview:
		return w.Validate()
	default:
		return &ValidationError{Field: "step", Message: fmt.Sprintf("unknown step %d", step)}
	}
}

// CanAdvance reports whether the current step's schema passes.
func (w *Wizard) CanAdvance() bool {
	return w.ValidateStep(w.step) == nil
}

// Next advances to the following step. Advancing past an invalid step is
// never allowed.
func (w *Wizard) Next() error {
	if w.step >= stepCount-1 {
		return &ValidationError{Field: "step", Message: "already at the final step"}
	}
	if err := w.ValidateStep(w.step); err != nil {
		return err
	}
	w.step++
	return nil
}

// Back moves to the previous step. Backward navigation is always free.
func (w *Wizard) Back() {
	if w.step > 0 {
		w.step--
	}
}

// Validate runs every step schema plus the cross-field rules. Submission
// is only permitted when this passes.
func (w *Wizard) Validate() error {
	for step := StepBasicInfo; step < StepReview; step++ {
		if err := w.ValidateStep(step); err != nil {
			return err
		}
	}
	return validateBootSourceComplete(&w.draft)
}

// Submit validates the whole draft and returns the creation request.
// The draft is reset afterwards; it is never partially persisted.
func (w *Wizard) Submit() (*CreateRequest, error) {
	if err := w.Validate(); err != nil {
		w.logger.Warn("Submission blocked by validation", zap.Error(err))
		return nil, err
	}

	req := &CreateRequest{
		Name:              w.draft.Name,
		Description:       w.draft.Description,
		Username:          w.draft.Username,
		Password:          w.draft.Password,
		SSHAuthorizedKey:  w.draft.SSHAuthorizedKey,
		VCPU:              w.draft.VCPU,
		MemMiB:            w.draft.MemMiB,
		KernelImageID:     w.draft.KernelImageID,
		KernelPath:        w.draft.KernelPath,
		RootfsImageID:     w.draft.RootfsImageID,
		RootfsPath:        w.draft.RootfsPath,
		BootArgs:          w.draft.BootArgs,
		TapBase:           w.draft.TapBase,
		AllowMMDSRequests: w.draft.AllowMMDSRequests,
	}
	if req.BootArgs == "" {
		req.BootArgs = DefaultBootArgs
	}

	w.Cancel()
	w.logger.Info("Wizard draft submitted", zap.String("vm_name", req.Name))
	return req, nil
}

// Cancel discards the draft and returns to the first step.
func (w *Wizard) Cancel() {
	w.draft = Draft{VCPU: 1, MemMiB: 512}
	w.step = StepBasicInfo
}

// DefaultBootArgs is the canonical serial-console kernel command line.
const DefaultBootArgs = "console=ttyS0 reboot=k panic=1 pci=off"

// CreateRequest is the validated VM-creation payload handed to the
// execution layer. Image IDs and paths are exclusive per artifact; the
// two are never both set.
type CreateRequest struct {
	Name              string
	Description       string
	Username          string
	Password          string
	SSHAuthorizedKey  string
	VCPU              int64
	MemMiB            int64
	KernelImageID     string
	KernelPath        string
	RootfsImageID     string
	RootfsPath        string
	BootArgs          string
	TapBase           string
	AllowMMDSRequests bool
}
