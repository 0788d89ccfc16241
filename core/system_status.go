package core

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// SystemStatus is the aggregated status served to operators.
type SystemStatus struct {
	Storage struct {
		Driver string `json:"driver"`
		Users  int    `json:"users"`
	} `json:"storage"`
	Memory struct {
		UsedBytes  uint64 `json:"usedBytes"`
		TotalBytes uint64 `json:"totalBytes"`
	} `json:"memory"`
	UptimeSeconds int64 `json:"uptimeSeconds"`
}

// CollectSystemStatus gathers the current status. A storage failure is
// returned; memory figures are best-effort.
func CollectSystemStatus(ctx context.Context, users UserRepository, driver string, startedAt time.Time) (SystemStatus, error) {
	var st SystemStatus
	st.Storage.Driver = driver

	if users != nil {
		list, err := users.ListUsers(ctx)
		if err != nil {
			return st, err
		}
		st.Storage.Users = len(list)
	}

	used, total := readMemInfo()
	st.Memory.UsedBytes = used
	st.Memory.TotalBytes = total

	if !startedAt.IsZero() {
		st.UptimeSeconds = int64(time.Since(startedAt).Seconds())
	}
	return st, nil
}

// readMemInfo returns used and total bytes using /proc/meminfo.
// If unavailable, returns zeros.
func readMemInfo() (used, total uint64) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	var memTotal, memAvailable uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			memTotal = parseKiBLine(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			memAvailable = parseKiBLine(line)
		}
	}
	if memTotal == 0 {
		return 0, 0
	}
	if memAvailable <= memTotal {
		used = (memTotal - memAvailable) * 1024
	}
	return used, memTotal * 1024
}

func parseKiBLine(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
