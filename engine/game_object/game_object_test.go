package game_object

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
	"github.com/Carmen-Shannon/oxy-shadow/engine/shadow"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject(WithID(7))

	assert.Equal(t, uint64(7), obj.ID())
	assert.True(t, obj.Enabled())
	assert.True(t, obj.HasChanged())
	sx, sy, sz := obj.Scale()
	assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{sx, sy, sz})
	assert.Equal(t, mgl32.Ident4(), obj.LocalToWorld())
	assert.Equal(t, mgl32.Ident4(), obj.WorldToLocal())
	assert.Nil(t, obj.MeshSource())
	assert.Nil(t, obj.Caster())
}

func TestBuilderOptions(t *testing.T) {
	src := mesh.NewStaticSource(mesh.NewCube(1))
	caster := shadow.NewShadowCaster(src)
	obj := NewGameObject(
		WithEnabled(false),
		WithPosition(1, 2, 3),
		WithScale(2, 2, 2),
		WithRotation(0, 0.5, 0),
		WithRotationSpeed(0, 1, 0),
		WithMeshSource(src),
		WithCaster(caster),
	)

	pos, scale, rot, speed := obj.TransformData()
	assert.False(t, obj.Enabled())
	assert.Equal(t, [3]float32{1, 2, 3}, pos)
	assert.Equal(t, [3]float32{2, 2, 2}, scale)
	assert.Equal(t, [3]float32{0, 0.5, 0}, rot)
	assert.Equal(t, [3]float32{0, 1, 0}, speed)
	assert.Same(t, src, obj.MeshSource())
	assert.Same(t, caster, obj.Caster())
}

func TestChangedFlag(t *testing.T) {
	obj := NewGameObject()
	obj.ClearChanged()
	require.False(t, obj.HasChanged())

	obj.SetRotationSpeed(0, 0, 0)
	assert.False(t, obj.HasChanged(), "rotation speed alone does not move the object")

	obj.SetPosition(0, 1, 0)
	assert.True(t, obj.HasChanged())
	obj.ClearChanged()

	obj.SetScale(2, 1, 1)
	assert.True(t, obj.HasChanged())
	obj.ClearChanged()

	obj.SetRotation(0, 1, 0)
	assert.True(t, obj.HasChanged())
}

func TestAdvance(t *testing.T) {
	obj := NewGameObject(WithRotationSpeed(0, 2, 0))
	obj.ClearChanged()

	obj.Advance(0.25)
	_, ry, _ := obj.Rotation()
	assert.InDelta(t, 0.5, ry, 1e-6)
	assert.True(t, obj.HasChanged())

	still := NewGameObject()
	still.ClearChanged()
	still.Advance(1)
	assert.False(t, still.HasChanged())
}

func TestMatricesFollowTransform(t *testing.T) {
	obj := NewGameObject(
		WithPosition(3, -1, 2),
		WithRotation(0, math.Pi/2, 0),
		WithScale(2, 2, 2),
	)

	l2w := obj.LocalToWorld()
	p := common.TransformPoint(l2w, mgl32.Vec3{1, 0, 0})
	// Yaw by 90 degrees maps +X to -Z before scaling and translation.
	want := mgl32.Vec3{3, -1, 0}
	assert.InDeltaSlice(t, want[:], p[:], 1e-5)

	back := common.TransformPoint(obj.WorldToLocal(), p)
	assert.InDeltaSlice(t, []float32{1, 0, 0}, back[:], 1e-5)

	obj.SetPosition(0, 0, 0)
	moved := common.TransformPoint(obj.LocalToWorld(), mgl32.Vec3{})
	assert.InDeltaSlice(t, []float32{0, 0, 0}, moved[:], 1e-6)
}

func TestSingularScale(t *testing.T) {
	obj := NewGameObject(WithScale(0, 1, 1))
	assert.Equal(t, mgl32.Mat4{}, obj.WorldToLocal())
}
