package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shadow/engine/scene"
)

// VolumeCallback receives the shadow volumes a scene produced during one frame. It is the
// hand-off point to whatever renders the volumes. The results slice is reused by the next
// frame and must not be retained.
type VolumeCallback func(sceneKey int, results []scene.VolumeResult)

// engine implements the Engine interface.
// Coordinates the tick loop, scene updates and the volume hand-off.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	mu      sync.RWMutex
	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	volumeCallback VolumeCallback

	scenes map[int]scene.Scene
}

// Engine is the main entry point for the engine.
// It runs a headless fixed-rate loop: every tick calls the tick callback, updates every
// active scene in ascending key order, hands each scene's volumes to the volume callback and
// feeds the profiler.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the engine's profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the start of each tick, before the
	// scenes update. Use this to move objects and aim the light.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetVolumeCallback registers the function that receives each scene's volumes.
	//
	// Parameters:
	//   - callback: the volume consumer
	SetVolumeCallback(callback VolumeCallback)

	// AddScene registers a scene at the given key.
	// Scenes are updated in ascending key order.
	//
	// Parameters:
	//   - key: the ordering key (lower updates first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	//
	// Parameters:
	//   - key: the key of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the key of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes by key.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Step runs a single frame synchronously with the given delta time: tick callback,
	// scene updates, volume hand-off and profiler tick. Run calls it on every tick; calling it
	// directly while Run is active is not supported.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Step(deltaTime float32)

	// Run starts the engine loop and blocks until Quit is called or a frame panics.
	Run()

	// Quit signals the engine loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		wg:              sync.WaitGroup{},
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

func (e *engine) Run() {
	e.running.Store(true)
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleQuit()
	e.wg.Wait()
	e.running.Store(false)
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Runs one frame at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	// Recover from panics inside a frame to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("engine: frame recovered from panic", slog.String("panic", fmt.Sprint(r)))
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) Step(deltaTime float32) {
	e.mu.RLock()
	tick := e.tickCallback
	onVolumes := e.volumeCallback
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	active := make([]scene.Scene, 0, len(keys))
	activeKeys := keys[:0]
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
			activeKeys = append(activeKeys, k)
		}
	}
	e.mu.RUnlock()

	if tick != nil {
		tick(deltaTime)
	}

	profiling := e.profilingEnabled.Load()
	for i, s := range active {
		results := s.Update(deltaTime)
		if profiling {
			triangles := 0
			for _, r := range results {
				triangles += r.Volume.TriangleCount()
			}
			e.profiler.Record(len(results), triangles)
		}
		if onVolumes != nil {
			onVolumes(activeKeys[i], results)
		}
	}

	if profiling {
		e.profiler.Tick()
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetVolumeCallback(callback VolumeCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volumeCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
