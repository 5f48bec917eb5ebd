package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-shadow/common"
)

// Stats is one logged profiler window.
type Stats struct {
	FPS               float64
	VolumesPerFrame   float64
	TrianglesPerFrame float64
	HeapMB            float64
	AllocRateMB       float64
	GCCount           uint32
	LastPauseUs       uint64
	MaxPauseUs        uint64
	SysMB             float64
}

// Profiler tracks frame rate, shadow volume throughput and memory statistics.
// Outputs stats through the engine logger at a configurable interval.
// A Profiler is driven by a single goroutine.
type Profiler struct {
	frameCount     int
	volumeCount    int
	triangleCount  int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// SetUpdateInterval changes how often Tick logs. Non-positive values log on every tick.
//
// Parameters:
//   - d: the logging interval
func (p *Profiler) SetUpdateInterval(d time.Duration) {
	p.updateInterval = d
}

// Record adds the shadow volumes produced during the current frame.
//
// Parameters:
//   - volumes: number of volumes built
//   - triangles: total triangle count across those volumes
func (p *Profiler) Record(volumes, triangles int) {
	p.volumeCount += volumes
	p.triangleCount += triangles
}

// Last returns the most recently logged window.
//
// Returns:
//   - Stats: the last stats, zero before the first log
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, volumes and triangles per frame, heap usage, allocation rate,
// GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}
	seconds := max(elapsed.Seconds(), 1e-9)

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	s := Stats{
		FPS:               float64(p.frameCount) / seconds,
		VolumesPerFrame:   float64(p.volumeCount) / float64(p.frameCount),
		TrianglesPerFrame: float64(p.triangleCount) / float64(p.frameCount),
		HeapMB:            float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:             float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:       float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds,
		GCCount:           p.memStats.NumGC,
	}

	// Calculate GC pause stats (last pause and max recent pause)
	if s.GCCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	common.Logger().Info("profiler",
		slog.Float64("fps", s.FPS),
		slog.Float64("volumes_per_frame", s.VolumesPerFrame),
		slog.Float64("triangles_per_frame", s.TrianglesPerFrame),
		slog.Float64("heap_mb", s.HeapMB),
		slog.Float64("alloc_rate_mb_s", s.AllocRateMB),
		slog.Uint64("gc", uint64(s.GCCount)),
		slog.Uint64("gc_last_us", s.LastPauseUs),
		slog.Uint64("gc_max_us", s.MaxPauseUs),
		slog.Float64("sys_mb", s.SysMB),
	)

	p.last = s
	p.frameCount = 0
	p.volumeCount = 0
	p.triangleCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
