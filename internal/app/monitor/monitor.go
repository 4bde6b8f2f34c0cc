package monitor

import (
	"context"
	"math"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Stats contains process resource statistics
type Stats struct {
	CPU     float64 `json:"cpuPercent"`
	MEM     float64 `json:"memoryMb"`
	Threads int32   `json:"threads"`
}

// Monitor samples process resource usage for health reports
type Monitor interface {
	GetStats(ctx context.Context, pid int) (Stats, error)
	Self(ctx context.Context) (Stats, error)
}

type monitor struct{}

// NewMonitor creates a new Monitor instance
func NewMonitor() Monitor {
	return &monitor{}
}

func (m *monitor) GetStats(ctx context.Context, pid int) (Stats, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return Stats{}, nil
	}

	proc, err := process.NewProcessWithContext(ctx, int32(pid)) // #nosec G115 -- PID range checked above
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{}

	if cpuPercent, err := proc.CPUPercentWithContext(ctx); err == nil {
		stats.CPU = cpuPercent
	}

	if memInfo, err := proc.MemoryInfoWithContext(ctx); err == nil {
		stats.MEM = float64(memInfo.RSS) / 1024 / 1024
	}

	if threads, err := proc.NumThreadsWithContext(ctx); err == nil {
		stats.Threads = threads
	}

	return stats, nil
}

// Self samples the running process
func (m *monitor) Self(ctx context.Context) (Stats, error) {
	return m.GetStats(ctx, os.Getpid())
}
