package scene

import (
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/game_object"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/shadow"
)

// VolumeResult pairs a shadow volume with the object that cast it.
type VolumeResult struct {
	ObjectID uint64
	Volume   *shadow.Volume
}

// Scene manages a directional light and a registry of shadow-casting GameObjects.
// Each Update evaluates every enabled caster in parallel and returns the resulting volumes.
// Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently updated by the engine.
	Active() bool

	// SetActive sets whether this scene is updated by the engine.
	SetActive(active bool)

	// Light returns the scene's directional light, or nil if none is set.
	//
	// Returns:
	//   - light.Light: the light or nil
	Light() light.Light

	// SetLight replaces the scene's directional light. Pass nil to remove it, which makes
	// every caster inactive.
	//
	// Parameters:
	//   - l: the light
	SetLight(l light.Light)

	// Count returns the number of registered objects.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// Add registers a GameObject and prepares its caster. Objects without an ID are assigned
	// the next free one. When the object has no caster, one is created from its mesh source
	// with the scene's caster options and transform pool. A caster that fails to initialize
	// is logged and kept as inactive: the object stays registered but produces no volume.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject) uint64

	// Get returns the object with the given ID, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove unregisters the object with the given ID and disposes its caster.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Clear removes and disposes every object.
	Clear()

	// InitError returns the error that made an object's caster inactive at Add time, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - error: the initialization error or nil
	InitError(id uint64) error

	// Update advances every enabled object by deltaTime seconds and evaluates all active casters
	// in parallel on the scene's compute pool. Results are ordered by object ID. Objects whose
	// caster reports an error are logged and left out.
	// The returned slice is reused by the next Update.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds since the previous update
	//
	// Returns:
	//   - []VolumeResult: one entry per caster that produced a volume
	Update(deltaTime float32) []VolumeResult

	// Close disposes every caster and stops the worker pools. The scene must not be used
	// afterwards.
	Close()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool
	lgt    light.Light

	registry   map[uint64]game_object.GameObject
	initErrors map[uint64]error
	nextID     uint64
	casterOpts []shadow.CasterBuilderOption
	pending    []game_object.GameObject // objects from WithObjects, added once the pools exist

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	order   []game_object.GameObject
	slots   []VolumeResult
	results []VolumeResult

	// computePool evaluates casters in parallel. Workers persist across frames, avoiding
	// per-frame goroutine spawn/teardown overhead.
	computePool    worker.DynamicWorkerPool
	computeWorkers int

	// transformPool runs world-space transform batches submitted by casters. It is separate
	// from computePool because a caster blocks its compute worker until its batches finish.
	transformPool    worker.DynamicWorkerPool
	transformWorkers int

	closed atomic.Bool
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given name and options.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:               &sync.RWMutex{},
		name:             name,
		active:           false,
		registry:         make(map[uint64]game_object.GameObject),
		initErrors:       make(map[uint64]error),
		nextID:           1,
		computeWorkers:   max(runtime.NumCPU()-1, 1),
		transformWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the pools after options so WithComputeWorkers and WithTransformWorkers can
	// override the defaults. Queue size of 256 accommodates typical caster counts with headroom.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	s.transformPool = worker.NewDynamicWorkerPool(s.transformWorkers, 256, 1*time.Second)

	for _, obj := range s.pending {
		s.Add(obj)
	}
	s.pending = nil
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Light() light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lgt
}

func (s *scene) SetLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lgt = l
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obj.ID() == 0 {
		obj.SetID(s.nextID)
	}
	if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}
	if prev, ok := s.registry[obj.ID()]; ok && prev != obj {
		s.disposeLocked(prev)
	}
	s.registry[obj.ID()] = obj
	delete(s.initErrors, obj.ID())

	c := obj.Caster()
	if c == nil {
		opts := append([]shadow.CasterBuilderOption{shadow.WithWorkerPool(s.transformPool)}, s.casterOpts...)
		c = shadow.NewShadowCaster(obj.MeshSource(), opts...)
		obj.SetCaster(c)
	}
	if c.State() == shadow.StateUninitialized {
		if err := c.Initialize(); err != nil {
			s.initErrors[obj.ID()] = err
			common.Logger().Warn("scene: caster initialization failed, object is inactive",
				slog.String("scene", s.name),
				slog.Uint64("object", obj.ID()),
				slog.Any("err", err),
			)
		}
	}
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.registry[id]
	if !exists {
		return
	}
	delete(s.registry, id)
	delete(s.initErrors, id)
	s.disposeLocked(obj)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obj := range s.registry {
		s.disposeLocked(obj)
	}
	s.registry = make(map[uint64]game_object.GameObject)
	s.initErrors = make(map[uint64]error)
}

func (s *scene) InitError(id uint64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initErrors[id]
}

// disposeLocked releases the caster of obj. Caller must hold s.mu write lock, which also
// guarantees no Update is evaluating it.
func (s *scene) disposeLocked(obj game_object.GameObject) {
	c := obj.Caster()
	if c == nil {
		return
	}
	if err := c.Dispose(); err != nil {
		common.Logger().Warn("scene: caster dispose failed",
			slog.Uint64("object", obj.ID()),
			slog.Any("err", err),
		)
	}
}

func (s *scene) Update(deltaTime float32) []VolumeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = s.results[:0]
	if s.closed.Load() {
		return s.results
	}
	if s.lgt == nil || !s.lgt.CastsShadows() {
		common.Logger().Debug("scene: no shadow-casting light", slog.String("scene", s.name))
		return s.results
	}

	s.order = s.order[:0]
	for id, obj := range s.registry {
		if !obj.Enabled() || obj.Caster() == nil || s.initErrors[id] != nil {
			continue
		}
		s.order = append(s.order, obj)
	}
	slices.SortFunc(s.order, func(a, b game_object.GameObject) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})

	if cap(s.slots) < len(s.order) {
		s.slots = make([]VolumeResult, len(s.order))
	}
	s.slots = s.slots[:len(s.order)]

	// A WaitGroup provides the per-frame barrier since pool.Wait() waits for the pool to go
	// idle, which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	lgt := s.lgt
	for i, obj := range s.order {
		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				// Pool workers have no recover of their own; a panic here would end the process.
				defer func() {
					if r := recover(); r != nil {
						s.slots[i] = VolumeResult{ObjectID: obj.ID()}
						common.Logger().Error("scene: caster evaluation panicked",
							slog.Uint64("object", obj.ID()),
							slog.Any("panic", r),
						)
					}
				}()
				obj.Advance(deltaTime)
				vol, err := obj.Caster().Evaluate(obj, lgt)
				s.slots[i] = VolumeResult{ObjectID: obj.ID(), Volume: vol}
				if err != nil {
					logEvaluateError(obj.ID(), err)
				}
				return vol, err
			},
		})
	}
	wg.Wait()

	for _, r := range s.slots {
		if r.Volume != nil {
			s.results = append(s.results, r)
		}
	}
	return s.results
}

func (s *scene) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	for _, obj := range s.registry {
		s.disposeLocked(obj)
	}
	s.mu.Unlock()

	s.computePool.Stop()
	s.transformPool.Stop()
}

func logEvaluateError(id uint64, err error) {
	if errors.Is(err, shadow.ErrInactive) {
		common.Logger().Debug("scene: caster inactive", slog.Uint64("object", id), slog.Any("err", err))
		return
	}
	common.Logger().Warn("scene: caster evaluation failed", slog.Uint64("object", id), slog.Any("err", err))
}
