package wizard

import (
	"fmt"
)

// validateBasicInfo validates the name and description fields.
func validateBasicInfo(d *Draft) error {
	if d.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(d.Name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("name too long (max %d characters)", MaxNameLength)}
	}
	if !ValidNameRegex.MatchString(d.Name) {
		return &ValidationError{Field: "name", Message: "name must start with a letter and contain only alphanumeric characters, hyphens, and underscores"}
	}
	return nil
}

// validateCredentials requires a username and at least one login method.
func validateCredentials(d *Draft) error {
	if d.Username == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if d.Password == "" && d.SSHAuthorizedKey == "" {
		return &ValidationError{Field: "credentials", Message: "a password or an SSH authorized key is required"}
	}
	return nil
}

// validateMachineConfig bounds vCPU and memory.
func validateMachineConfig(d *Draft) error {
	if d.VCPU < MinVCPU || d.VCPU > MaxVCPU {
		return &ValidationError{Field: "vcpu", Message: fmt.Sprintf("vCPU count must be between %d and %d", MinVCPU, MaxVCPU)}
	}
	if d.MemMiB < MinMemMiB || d.MemMiB > MaxMemMiB {
		return &ValidationError{Field: "mem_mib", Message: fmt.Sprintf("memory must be between %d and %d MiB", MinMemMiB, MaxMemMiB)}
	}
	return nil
}

// validateBootSource enforces image-vs-path exclusivity per artifact. The
// setters maintain the invariant for UI edits; direct field writes are
// caught here.
func validateBootSource(d *Draft) error {
	if d.KernelImageID != "" && d.KernelPath != "" {
		return &ValidationError{Field: "kernel", Message: "kernel image and kernel path are mutually exclusive"}
	}
	if d.RootfsImageID != "" && d.RootfsPath != "" {
		return &ValidationError{Field: "rootfs", Message: "rootfs image and rootfs path are mutually exclusive"}
	}
	return nil
}

// validateBootSourceComplete additionally requires both artifacts to be
// present. Only the final whole-draft schema enforces this, so the user
// can walk through the boot step before choosing.
func validateBootSourceComplete(d *Draft) error {
	if err := validateBootSource(d); err != nil {
		return err
	}
	if d.KernelImageID == "" && d.KernelPath == "" {
		return &ValidationError{Field: "kernel", Message: "a kernel image or kernel path is required"}
	}
	if d.RootfsImageID == "" && d.RootfsPath == "" {
		return &ValidationError{Field: "rootfs", Message: "a rootfs image or rootfs path is required"}
	}
	return nil
}

// validateNetwork validates the tap base name.
func validateNetwork(d *Draft) error {
	if d.TapBase == "" {
		return &ValidationError{Field: "tap_base", Message: "tap base interface name is required"}
	}
	if len(d.TapBase) > MaxTapBaseLen {
		return &ValidationError{Field: "tap_base", Message: fmt.Sprintf("tap base too long (max %d characters)", MaxTapBaseLen)}
	}
	if !ValidTapRegex.MatchString(d.TapBase) {
		return &ValidationError{Field: "tap_base", Message: "tap base contains invalid characters"}
	}
	return nil
}
