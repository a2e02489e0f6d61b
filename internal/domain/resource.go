package domain

// RateLimiter is a token-bucket configuration bounding a NIC's or drive's
// throughput. Zero values mean unlimited.
type RateLimiter struct {
	Size         int64 `json:"size"`
	OneTimeBurst int64 `json:"one_time_burst"`
	RefillTime   int64 `json:"refill_time"`
}

// IsZero returns true if the limiter imposes no bound.
func (r RateLimiter) IsZero() bool {
	return r.Size == 0 && r.OneTimeBurst == 0 && r.RefillTime == 0
}

// Nic is a network interface attached to a VM.
//
// IfaceID and HostDevName are identity fields: set once at creation and
// immutable afterwards. Only the rate limiters are editable post-creation.
type Nic struct {
	IfaceID           string      `json:"iface_id"`
	HostDevName       string      `json:"host_dev_name"`
	GuestMAC          string      `json:"guest_mac,omitempty"`
	AllowMMDSRequests bool        `json:"allow_mmds_requests"`
	RxRateLimiter     RateLimiter `json:"rx_rate_limiter"`
	TxRateLimiter     RateLimiter `json:"tx_rate_limiter"`
}

// DriveMode selects how a drive's backing storage is provided at creation.
type DriveMode string

const (
	// DriveModeAuto provisions backing storage of SizeBytes on the host.
	DriveModeAuto DriveMode = "auto"
	// DriveModeManual attaches an existing host file at PathOnHost.
	DriveModeManual DriveMode = "manual"
)

// Drive is a block device attached to a VM.
//
// Exactly one of PathOnHost (manual mode) or SizeBytes (auto-provisioned)
// is meaningful at creation. DriveID, IsRootDevice and IsReadOnly are
// immutable after creation; only the rate limiter is editable.
type Drive struct {
	DriveID      string      `json:"drive_id"`
	PathOnHost   string      `json:"path_on_host,omitempty"`
	SizeBytes    int64       `json:"size_bytes,omitempty"`
	IsRootDevice bool        `json:"is_root_device"`
	IsReadOnly   bool        `json:"is_read_only"`
	RateLimiter  RateLimiter `json:"rate_limiter"`
}
