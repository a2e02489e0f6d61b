// Package alloc computes collision-free identifiers for VM network
// interfaces: interface IDs, host device names, and guest MAC addresses.
// All functions are deterministic given the same inputs except
// GenerateMAC, which draws random octets.
package alloc

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
)

// ReservedIfaceID is the interface ID claimed by the VM's primary
// interface; the allocator never hands it out.
const ReservedIfaceID = "eth0"

// MaxHostDevNameLen is the Linux interface name limit.
const MaxHostDevNameLen = 15

// minHostDevNameLen rejects degenerate candidates produced by long suffixes.
const minHostDevNameLen = 3

// hostDevNameAttempts bounds the collision-avoidance search.
const hostDevNameAttempts = 100

// macPrefix marks generated MACs as locally administered and unicast,
// outside every IEEE-assigned vendor range.
const macPrefix = "02:fc"

// NextInterfaceID returns the first eth<N> (N >= 1) whose ID is not in
// existing, compared case-insensitively. eth0 is always reserved. The scan
// continues past any contiguous run, so it terminates for any input.
func NextInterfaceID(existing []string) string {
	used := make(map[string]struct{}, len(existing)+1)
	used[ReservedIfaceID] = struct{}{}
	for _, id := range existing {
		used[strings.ToLower(id)] = struct{}{}
	}
	for n := 1; ; n++ {
		candidate := "eth" + strconv.Itoa(n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// HostDevName is the result of a host device name allocation.
type HostDevName struct {
	Name string
	// Fallback is set when the bounded search exhausted all attempts and
	// the truncated tap base was returned as-is. The name may then collide
	// with an existing device; callers should surface this rather than
	// treat it as a clean allocation.
	Fallback bool
}

// NextHostDevName derives a host-side device name from the VM's tap base
// and the interface suffix, keeping the result within the 15-character
// Linux limit and out of existing (compared case-insensitively).
//
// Each attempt appends a numeric disambiguator to the suffix and truncates
// the tap base to fit. If 100 attempts all collide, the truncated tap base
// is returned with Fallback set.
func NextHostDevName(tapBase, ifaceSuffix string, existing []string) HostDevName {
	used := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		used[strings.ToLower(name)] = struct{}{}
	}

	for attempt := 0; attempt < hostDevNameAttempts; attempt++ {
		suffix := ifaceSuffix
		if attempt > 0 {
			suffix += strconv.Itoa(attempt)
		}
		keep := MaxHostDevNameLen - len(suffix)
		if keep < 0 {
			keep = 0
		}
		prefix := tapBase
		if len(prefix) > keep {
			prefix = prefix[:keep]
		}
		candidate := prefix + suffix
		if len(candidate) > MaxHostDevNameLen {
			candidate = candidate[:MaxHostDevNameLen]
		}
		if len(candidate) < minHostDevNameLen {
			continue
		}
		if _, taken := used[strings.ToLower(candidate)]; !taken {
			return HostDevName{Name: candidate}
		}
	}

	name := tapBase
	if len(name) > MaxHostDevNameLen {
		name = name[:MaxHostDevNameLen]
	}
	return HostDevName{Name: name, Fallback: true}
}

// GenerateMAC returns a locally administered unicast MAC address: the
// fixed 02:fc prefix followed by four uniformly random octets, rendered
// as lowercase colon-separated hex.
func GenerateMAC() string {
	var b [4]byte
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%s:%02x:%02x:%02x:%02x", macPrefix, b[0], b[1], b[2], b[3])
}
