package shadow

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultBatchSize is the number of vertices each transform task handles.
const DefaultBatchSize = 256

// Transformer converts local-space vertex positions to world space.
type Transformer interface {
	// Transform writes dst[i] = (m * (src[i], 1)).xyz for every i. Order is preserved and no
	// perspective divide is applied, so non-invertible matrices are accepted.
	// When a worker pool is configured and src spans more than one batch, disjoint batches
	// run on the pool and Transform returns only after all of them have finished.
	//
	// Parameters:
	//   - dst: destination buffer, reused when it has enough capacity
	//   - src: local-space positions
	//   - localToWorld: the object's model matrix
	//
	// Returns:
	//   - []mgl32.Vec3: dst resized to len(src) and filled
	Transform(dst, src []mgl32.Vec3, localToWorld mgl32.Mat4) []mgl32.Vec3

	// BatchSize returns the number of vertices handled by each task.
	//
	// Returns:
	//   - int: the batch size
	BatchSize() int
}

type transformer struct {
	pool      worker.DynamicWorkerPool
	batchSize int
}

var _ Transformer = &transformer{}

// NewTransformer creates a Transformer. pool may be nil, in which case every call runs on
// the calling goroutine. A non-positive batchSize falls back to DefaultBatchSize.
//
// Parameters:
//   - pool: the worker pool used for batches, or nil
//   - batchSize: vertices per task
//
// Returns:
//   - Transformer: the new transformer
func NewTransformer(pool worker.DynamicWorkerPool, batchSize int) Transformer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &transformer{pool: pool, batchSize: batchSize}
}

func (t *transformer) BatchSize() int {
	return t.batchSize
}

func (t *transformer) Transform(dst, src []mgl32.Vec3, localToWorld mgl32.Mat4) []mgl32.Vec3 {
	if cap(dst) < len(src) {
		dst = make([]mgl32.Vec3, len(src))
	}
	dst = dst[:len(src)]

	batches := common.ChunkCount(len(src), t.batchSize)
	if t.pool == nil || batches <= 1 {
		transformRange(dst, src, localToWorld)
		return dst
	}

	var wg sync.WaitGroup
	for b := range batches {
		lo := b * t.batchSize
		hi := min(lo+t.batchSize, len(src))
		wg.Add(1)
		t.pool.SubmitTask(worker.Task{
			ID: b,
			Do: func() (any, error) {
				defer wg.Done()
				transformRange(dst[lo:hi], src[lo:hi], localToWorld)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return dst
}

func transformRange(dst, src []mgl32.Vec3, m mgl32.Mat4) {
	for i, p := range src {
		dst[i] = common.TransformPoint(m, p)
	}
}
