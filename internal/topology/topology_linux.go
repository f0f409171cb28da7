// Linux topology detection from /proc and /sys.

//go:build linux

package topology

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// readPlatform is the Linux implementation. A cgroup CPU quota takes
// priority over /proc/cpuinfo so that inside a container we report the
// cores the container can actually use, not the host's full count.
func readPlatform(h *Host) {
	parseCPUInfo(h)
	countNUMANodes(h)
	readL3Cache(h)
	countHybridCores(h)

	if n := cgroupCPULimit(); n > 0 && n < h.LogicalCores {
		h.LogicalCores = n
		h.PhysicalCores = n
		h.PCores = n
		h.ECores = 0
	}
}

// parseCPUInfo reads /proc/cpuinfo for the model name and socket count.
func parseCPUInfo(h *Host) {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return
	}
	defer f.Close()

	physicalIDs := map[string]struct{}{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "model name":
			if h.ModelName == "" {
				h.ModelName = val
			}
		case "physical id":
			physicalIDs[val] = struct{}{}
		}
	}

	if len(physicalIDs) > 0 {
		// rough: assume symmetric multi-socket
		h.PhysicalCores = h.LogicalCores / len(physicalIDs)
	}
}

// countHybridCores buckets cores into P/E by their reported capacity.
func countHybridCores(h *Host) {
	pCores, eCores := 0, 0
	for i := 0; i < h.LogicalCores; i++ {
		data, err := os.ReadFile("/sys/devices/system/cpu/cpu" + strconv.Itoa(i) + "/cpu_capacity")
		if err != nil {
			continue
		}
		capVal, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			continue
		}
		// Capacity values: P-cores ≈ 1024, E-cores ≈ 316 (exact values vary).
		if capVal >= 700 {
			pCores++
		} else {
			eCores++
		}
	}
	if pCores > 0 {
		h.PCores = pCores
		h.ECores = eCores
	}
}

// countNUMANodes counts node directories under /sys.
func countNUMANodes(h *Host) {
	entries, err := os.ReadDir("/sys/devices/system/node")
	if err != nil {
		return
	}
	count := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "node") {
			count++
		}
	}
	if count > 0 {
		h.NUMANodes = count
	}
}

// readL3Cache walks cpu0's cache indices looking for a unified L3.
func readL3Cache(h *Host) {
	for i := 0; i < 8; i++ {
		base := "/sys/devices/system/cpu/cpu0/cache/index" + strconv.Itoa(i)
		level, _ := os.ReadFile(base + "/level")
		ctype, _ := os.ReadFile(base + "/type")
		size, _ := os.ReadFile(base + "/size")

		if strings.TrimSpace(string(level)) == "3" &&
			strings.TrimSpace(string(ctype)) != "Instruction" {
			h.L3CacheBytes = parseCacheSize(strings.TrimSpace(string(size)))
			return
		}
	}
}

// parseCacheSize converts sysfs strings like "12288K" or "12M" to bytes.
func parseCacheSize(s string) int64 {
	if strings.HasSuffix(s, "K") {
		v, _ := strconv.ParseInt(strings.TrimSuffix(s, "K"), 10, 64)
		return v * 1024
	}
	if strings.HasSuffix(s, "M") {
		v, _ := strconv.ParseInt(strings.TrimSuffix(s, "M"), 10, 64)
		return v * 1024 * 1024
	}
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// cgroupCPULimit returns the effective CPU count from the cgroup CPU
// quota, or 0 if no limit applies. Supports cgroup v1 and v2.
func cgroupCPULimit() int {
	// cgroup v2: /sys/fs/cgroup/cpu.max holds "<quota> <period>" or "max <period>".
	if data, err := os.ReadFile("/sys/fs/cgroup/cpu.max"); err == nil {
		fields := strings.Fields(strings.TrimSpace(string(data)))
		if len(fields) >= 2 && fields[0] != "max" {
			if n := quotaCores(fields[0], fields[1]); n > 0 {
				return n
			}
		}
	}

	// cgroup v1.
	quota, e1 := os.ReadFile("/sys/fs/cgroup/cpu/cpu.cfs_quota_us")
	period, e2 := os.ReadFile("/sys/fs/cgroup/cpu/cpu.cfs_period_us")
	if e1 == nil && e2 == nil {
		if n := quotaCores(strings.TrimSpace(string(quota)), strings.TrimSpace(string(period))); n > 0 {
			return n
		}
	}
	return 0
}

func quotaCores(quotaStr, periodStr string) int {
	quota, e1 := strconv.ParseFloat(quotaStr, 64)
	period, e2 := strconv.ParseFloat(periodStr, 64)
	if e1 != nil || e2 != nil || quota <= 0 || period <= 0 {
		return 0
	}
	n := int(quota / period)
	if n < 1 {
		n = 1
	}
	return n
}
