package wizard

// Draft is the ephemeral, in-memory aggregate of every field needed to
// submit a VM-creation request. It is never partially persisted: the
// wizard discards it on submit or cancel.
type Draft struct {
	// Basic info
	Name        string
	Description string

	// Credentials
	Username         string
	Password         string
	SSHAuthorizedKey string

	// Machine config
	VCPU   int64
	MemMiB int64

	// Boot source. Image ID and host path are mutually exclusive per
	// artifact; the setters below maintain that invariant.
	KernelImageID string
	KernelPath    string
	RootfsImageID string
	RootfsPath    string
	BootArgs      string

	// Network
	TapBase           string
	AllowMMDSRequests bool
}

// SetKernelImage selects a kernel image by ID, clearing any previously
// entered kernel path.
func (d *Draft) SetKernelImage(id string) {
	d.KernelImageID = id
	if id != "" {
		d.KernelPath = ""
	}
}

// SetKernelPath selects a kernel by host path, clearing any previously
// selected kernel image.
func (d *Draft) SetKernelPath(path string) {
	d.KernelPath = path
	if path != "" {
		d.KernelImageID = ""
	}
}

// SetRootfsImage selects a rootfs image by ID, clearing any previously
// entered rootfs path.
func (d *Draft) SetRootfsImage(id string) {
	d.RootfsImageID = id
	if id != "" {
		d.RootfsPath = ""
	}
}

// SetRootfsPath selects a rootfs by host path, clearing any previously
// selected rootfs image.
func (d *Draft) SetRootfsPath(path string) {
	d.RootfsPath = path
	if path != "" {
		d.RootfsImageID = ""
	}
}
