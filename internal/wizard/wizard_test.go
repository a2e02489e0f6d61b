package wizard

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nexusvm/console/internal/domain"
)

// MockImageRegistry is a mock implementation of the ImageRegistry interface.
type MockImageRegistry struct {
	images map[domain.ImageKind][]domain.Image
	err    error
}

func (m *MockImageRegistry) ListImages(ctx context.Context, kind domain.ImageKind) ([]domain.Image, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.images[kind], nil
}

func newRegistry() *MockImageRegistry {
	return &MockImageRegistry{
		images: map[domain.ImageKind][]domain.Image{
			domain.ImageKindKernel: {{ID: "img-kernel-1", Kind: domain.ImageKindKernel}},
			domain.ImageKindRootfs: {{ID: "img-rootfs-1", Kind: domain.ImageKindRootfs}},
		},
	}
}

// fillValid walks the draft to a submittable state.
func fillValid(w *Wizard) {
	d := w.Draft()
	d.Name = "test-vm"
	d.Username = "root"
	d.Password = "hunter2"
	d.VCPU = 2
	d.MemMiB = 1024
	d.SetKernelImage("img-kernel-1")
	d.SetRootfsImage("img-rootfs-1")
	d.TapBase = "tap-vm1"
}

func TestWizard_BootSourcePrecedence(t *testing.T) {
	w := New(newRegistry(), zap.NewNop())
	d := w.Draft()

	d.SetKernelPath("/boot/vmlinux")
	d.SetKernelImage("img-kernel-1")
	if d.KernelPath != "" {
		t.Error("Selecting a kernel image must clear the kernel path")
	}

	d.SetKernelPath("/boot/vmlinux")
	if d.KernelImageID != "" {
		t.Error("Entering a kernel path must clear the kernel image")
	}

	d.SetRootfsImage("img-rootfs-1")
	d.SetRootfsPath("/srv/rootfs.ext4")
	if d.RootfsImageID != "" {
		t.Error("Entering a rootfs path must clear the rootfs image")
	}
}

func TestWizard_CannotSkipInvalidStep(t *testing.T) {
	w := New(newRegistry(), zap.NewNop())

	// Empty name: basic info is invalid.
	if w.CanAdvance() {
		t.Error("Expected basic info step to gate on empty name")
	}
	if err := w.Next(); err == nil {
		t.Fatal("Next must fail while the current step is invalid")
	}
	if w.CurrentStep() != StepBasicInfo {
		t.Errorf("Step moved to %v despite invalid input", w.CurrentStep())
	}

	w.Draft().Name = "test-vm"
	if err := w.Next(); err != nil {
		t.Fatalf("Next failed on valid step: %v", err)
	}
	if w.CurrentStep() != StepCredentials {
		t.Errorf("Expected credentials step, got %v", w.CurrentStep())
	}
}

func TestWizard_BackIsAlwaysFree(t *testing.T) {
	w := New(newRegistry(), zap.NewNop())
	w.Draft().Name = "test-vm"
	if err := w.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	// Credentials step is invalid, but going back is unrestricted.
	w.Back()
	if w.CurrentStep() != StepBasicInfo {
		t.Errorf("Expected basic info step, got %v", w.CurrentStep())
	}
	w.Back() // already at the first step: no-op
	if w.CurrentStep() != StepBasicInfo {
		t.Errorf("Back below the first step moved to %v", w.CurrentStep())
	}
}

func TestWizard_FinalValidationRequiresBootSource(t *testing.T) {
	w := New(newRegistry(), zap.NewNop())
	fillValid(w)
	w.Draft().KernelImageID = ""
	w.Draft().KernelPath = ""

	err := w.Validate()
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("Expected validation failure, got %v", err)
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "kernel" {
		t.Errorf("Expected kernel field error, got %v", err)
	}
}

func TestWizard_ApplyImageDefaults(t *testing.T) {
	w := New(newRegistry(), zap.NewNop())
	w.ApplyImageDefaults(context.Background())

	d := w.Draft()
	if d.KernelImageID != "img-kernel-1" {
		t.Errorf("Expected default kernel image, got %q", d.KernelImageID)
	}
	if d.RootfsImageID != "img-rootfs-1" {
		t.Errorf("Expected default rootfs image, got %q", d.RootfsImageID)
	}

	// A manual path wins over defaulting.
	w2 := New(newRegistry(), zap.NewNop())
	w2.Draft().SetKernelPath("/boot/vmlinux")
	w2.ApplyImageDefaults(context.Background())
	if w2.Draft().KernelImageID != "" {
		t.Error("Defaulting must not override an entered kernel path")
	}
}

func TestWizard_RegistryFailureIsNonFatal(t *testing.T) {
	reg := newRegistry()
	reg.err = domain.ErrBackend
	w := New(reg, zap.NewNop())
	w.ApplyImageDefaults(context.Background())

	fillValid(w)
	w.Draft().KernelImageID = ""
	w.Draft().SetKernelPath("/boot/vmlinux")
	if err := w.Validate(); err != nil {
		t.Fatalf("Manual paths must keep the wizard usable: %v", err)
	}
}

func TestWizard_SubmitResetsDraft(t *testing.T) {
	w := New(newRegistry(), zap.NewNop())
	fillValid(w)

	req, err := w.Submit()
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if req.Name != "test-vm" {
		t.Errorf("Expected request name test-vm, got %q", req.Name)
	}
	if req.BootArgs != DefaultBootArgs {
		t.Errorf("Expected default boot args, got %q", req.BootArgs)
	}
	if req.KernelImageID != "" && req.KernelPath != "" {
		t.Error("Image ID and path must never both be sent")
	}

	// Draft is destroyed on submit.
	if w.Draft().Name != "" || w.CurrentStep() != StepBasicInfo {
		t.Error("Submit must reset the draft and the step")
	}
}

func TestWizard_SubmitBlockedWhenInvalid(t *testing.T) {
	w := New(newRegistry(), zap.NewNop())
	fillValid(w)
	w.Draft().MemMiB = 1 // below minimum

	if _, err := w.Submit(); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("Expected validation failure, got %v", err)
	}
	// A blocked submit keeps the draft.
	if w.Draft().Name != "test-vm" {
		t.Error("Blocked submit must not discard the draft")
	}
}
