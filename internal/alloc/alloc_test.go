package alloc

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
)

func TestNextInterfaceID_SkipsGaps(t *testing.T) {
	got := NextInterfaceID([]string{"eth0", "eth1", "eth3"})
	if got != "eth2" {
		t.Errorf("Expected eth2, got %s", got)
	}
}

func TestNextInterfaceID_NeverReturnsReserved(t *testing.T) {
	got := NextInterfaceID(nil)
	if got == "eth0" {
		t.Error("eth0 is reserved and must never be allocated")
	}
	if got != "eth1" {
		t.Errorf("Expected eth1 for empty set, got %s", got)
	}
}

func TestNextInterfaceID_CaseInsensitive(t *testing.T) {
	got := NextInterfaceID([]string{"ETH1", "Eth2"})
	if got != "eth3" {
		t.Errorf("Expected eth3, got %s", got)
	}
}

func TestNextInterfaceID_ContiguousRun(t *testing.T) {
	var existing []string
	for i := 0; i <= 50; i++ {
		existing = append(existing, fmt.Sprintf("eth%d", i))
	}
	got := NextInterfaceID(existing)
	if got != "eth51" {
		t.Errorf("Expected eth51 past a contiguous run, got %s", got)
	}
	for _, id := range existing {
		if id == got {
			t.Errorf("Allocated ID %s collides with existing set", got)
		}
	}
}

func TestNextHostDevName_ShortBase(t *testing.T) {
	result := NextHostDevName("tap-vm1", "eth1", nil)
	if result.Fallback {
		t.Fatal("Unexpected fallback with no existing names")
	}
	if result.Name != "tap-vm1eth1" {
		t.Errorf("Expected tap-vm1eth1, got %s", result.Name)
	}
}

func TestNextHostDevName_TruncatesToLimit(t *testing.T) {
	result := NextHostDevName("tap-very-long-interface-base", "eth12", nil)
	if len(result.Name) > MaxHostDevNameLen {
		t.Errorf("Name %q exceeds %d characters", result.Name, MaxHostDevNameLen)
	}
	if !strings.HasSuffix(result.Name, "eth12") {
		t.Errorf("Expected suffix eth12 preserved, got %q", result.Name)
	}
}

func TestNextHostDevName_AvoidsCollisions(t *testing.T) {
	existing := []string{"tap-vm1eth1", "TAP-VM1ETH11"}
	result := NextHostDevName("tap-vm1", "eth1", existing)
	if result.Fallback {
		t.Fatal("Search should succeed before exhausting attempts")
	}
	for _, name := range existing {
		if strings.EqualFold(result.Name, name) {
			t.Errorf("Allocated name %q collides with %q", result.Name, name)
		}
	}
	if len(result.Name) > MaxHostDevNameLen {
		t.Errorf("Name %q exceeds %d characters", result.Name, MaxHostDevNameLen)
	}
}

func TestNextHostDevName_FallbackAfterExhaustion(t *testing.T) {
	// Occupy every candidate the search can produce.
	var existing []string
	base := "tap-vm1"
	existing = append(existing, "tap-vm1eth1")
	for attempt := 1; attempt < 100; attempt++ {
		suffix := fmt.Sprintf("eth1%d", attempt)
		keep := MaxHostDevNameLen - len(suffix)
		prefix := base
		if len(prefix) > keep {
			prefix = prefix[:keep]
		}
		existing = append(existing, prefix+suffix)
	}

	result := NextHostDevName(base, "eth1", existing)
	if !result.Fallback {
		t.Fatal("Expected fallback after all attempts collide")
	}
	if result.Name != base {
		t.Errorf("Expected truncated tap base %q, got %q", base, result.Name)
	}
}

func TestGenerateMAC_Format(t *testing.T) {
	macRe := regexp.MustCompile(`^02:fc(:[0-9a-f]{2}){4}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		mac := GenerateMAC()
		if !macRe.MatchString(mac) {
			t.Fatalf("Malformed MAC %q", mac)
		}
		seen[mac] = struct{}{}
	}
	// 100 draws over 2^32 values colliding down to one value would mean
	// the randomness is broken.
	if len(seen) < 2 {
		t.Error("GenerateMAC returned the same address across 100 calls")
	}
}
