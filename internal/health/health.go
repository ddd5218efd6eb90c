// Package health reports engine liveness plus a process self-portrait
// for the /health endpoint.
package health

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/voice-ci/engine/internal/session"
)

// Snapshot is the /health payload.
type Snapshot struct {
	OK          bool    `json:"ok"`
	ProcessID   string  `json:"processId"`
	Region      string  `json:"region"`
	PID         int32   `json:"pid"`
	UptimeSec   float64 `json:"uptimeSec"`
	Goroutines  int     `json:"goroutines"`
	CPUPercent  float64 `json:"cpuPercent,omitempty"`
	RSSBytes    uint64  `json:"rssBytes,omitempty"`
	Rooms       int     `json:"rooms"`
	ActiveRooms int     `json:"activeRooms"`
}

// Reporter samples the running process and the room registry.
type Reporter struct {
	processID string
	region    string
	registry  *session.Registry
	startedAt time.Time
	proc      *process.Process
}

// NewReporter builds a reporter for the current process. Process metric
// failures degrade to zero values rather than failing the health check.
func NewReporter(processID, region string, registry *session.Registry) *Reporter {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		proc = nil
	}
	return &Reporter{
		processID: processID,
		region:    region,
		registry:  registry,
		startedAt: time.Now(),
		proc:      proc,
	}
}

func (r *Reporter) Snapshot() Snapshot {
	snap := Snapshot{
		OK:          true,
		ProcessID:   r.processID,
		Region:      r.region,
		PID:         int32(os.Getpid()),
		UptimeSec:   time.Since(r.startedAt).Seconds(),
		Goroutines:  runtime.NumGoroutine(),
		Rooms:       r.registry.RoomCount(),
		ActiveRooms: r.registry.ActiveCount(),
	}

	if r.proc != nil {
		if cpu, err := r.proc.CPUPercent(); err == nil {
			snap.CPUPercent = cpu
		}
		if mem, err := r.proc.MemoryInfo(); err == nil && mem != nil {
			snap.RSSBytes = mem.RSS
		}
	}

	return snap
}
