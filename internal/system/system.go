// Package system reports the resource usage of the running process.
package system

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a snapshot of this process.
type Usage struct {
	RSS        uint64
	CPUPercent float64
	CPUTime    time.Duration
	Threads    int32
}

func (u Usage) String() string {
	return fmt.Sprintf("RSS %.1f MiB, CPU %.1f%% (%.2fs), потоков %d",
		float64(u.RSS)/(1<<20), u.CPUPercent, u.CPUTime.Seconds(), u.Threads)
}

// CurrentUsage samples the current process. Fields that cannot be read are
// left zero; only a missing process is an error.
func CurrentUsage() (Usage, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Usage{}, fmt.Errorf("не удалось открыть процесс: %w", err)
	}

	var u Usage
	if mem, err := p.MemoryInfo(); err == nil {
		u.RSS = mem.RSS
	}
	if pct, err := p.CPUPercent(); err == nil {
		u.CPUPercent = pct
	}
	if t, err := p.Times(); err == nil {
		u.CPUTime = time.Duration((t.User + t.System) * float64(time.Second))
	}
	if n, err := p.NumThreads(); err == nil {
		u.Threads = n
	}
	return u, nil
}
