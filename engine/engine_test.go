package engine

import (
	"bytes"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/game_object"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
	"github.com/Carmen-Shannon/oxy-shadow/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCubeScene(t *testing.T, name string, active bool, cubes int) scene.Scene {
	t.Helper()
	s := scene.NewScene(name,
		scene.WithActive(active),
		scene.WithLight(light.NewLight()),
		scene.WithComputeWorkers(1),
		scene.WithTransformWorkers(1),
	)
	for range cubes {
		s.Add(game_object.NewGameObject(game_object.WithMeshSource(mesh.NewStaticSource(mesh.NewCube(1)))))
	}
	t.Cleanup(s.Close)
	return s
}

// waitForRun runs e until it returns, failing the test if that takes longer than timeout.
func waitForRun(t *testing.T, e Engine, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		e.Quit()
		t.Fatal("engine did not stop in time")
	}
}

func TestStepOrder(t *testing.T) {
	var events []string
	var counts []int

	e := NewEngine(
		WithScene(2, newCubeScene(t, "second", true, 2)),
		WithScene(1, newCubeScene(t, "first", true, 1)),
		WithScene(3, newCubeScene(t, "idle", false, 1)),
		WithVolumeCallback(func(key int, results []scene.VolumeResult) {
			events = append(events, "volumes")
			counts = append(counts, key, len(results))
		}),
	)
	e.SetTickCallback(func(dt float32) {
		assert.Equal(t, float32(0.25), dt)
		events = append(events, "tick")
	})

	e.Step(0.25)

	assert.Equal(t, []string{"tick", "volumes", "volumes"}, events)
	assert.Equal(t, []int{1, 1, 2, 2}, counts)
}

func TestSceneRegistry(t *testing.T) {
	e := NewEngine()
	s := newCubeScene(t, "main", true, 0)

	e.AddScene(5, s)
	assert.Same(t, s, e.Scene(5))
	assert.Nil(t, e.Scene(6))

	scenes := e.Scenes()
	delete(scenes, 5)
	assert.Len(t, e.Scenes(), 1)

	e.RemoveScene(5)
	assert.Empty(t, e.Scenes())
}

func TestProfilerRecordsFrames(t *testing.T) {
	e := NewEngine(WithProfiling(true), WithScene(0, newCubeScene(t, "main", true, 3)))
	e.Profiler().SetUpdateInterval(0)

	e.Step(1.0 / 60)
	stats := e.Profiler().Last()
	assert.InDelta(t, 3, stats.VolumesPerFrame, 1e-9)
	assert.InDelta(t, 48, stats.TrianglesPerFrame, 1e-9)

	e.DisableProfiler()
	e.Step(1.0 / 60)
	assert.Equal(t, stats, e.Profiler().Last())
}

func TestRunUntilQuit(t *testing.T) {
	var ticks atomic.Int32
	var frames atomic.Int32

	e := NewEngine(
		WithTickRate(500),
		WithScene(0, newCubeScene(t, "main", true, 1)),
		WithVolumeCallback(func(int, []scene.VolumeResult) { frames.Add(1) }),
	)
	e.SetTickCallback(func(float32) {
		if ticks.Add(1) == 5 {
			e.Quit()
		}
	})

	waitForRun(t, e, 5*time.Second)
	assert.GreaterOrEqual(t, ticks.Load(), int32(5))
	assert.GreaterOrEqual(t, frames.Load(), int32(5))

	e.Quit()
}

func TestRunRecoversFromPanic(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	e := NewEngine(WithTickRate(1000))
	e.SetTickCallback(func(float32) { panic("boom") })

	waitForRun(t, e, 5*time.Second)
	require.Contains(t, buf.String(), "frame recovered from panic")
	assert.Contains(t, buf.String(), "boom")
}

func TestSetTickRate(t *testing.T) {
	e := NewEngine().(*engine)
	assert.Equal(t, time.Second/60, e.engineTickRate)

	e.SetTickRate(120)
	assert.Equal(t, time.Second/120, e.engineTickRate)

	e.SetTickRate(-1)
	assert.Equal(t, time.Second/60, e.engineTickRate)
}
