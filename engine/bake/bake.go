// Package bake evaluates every frame of a document into resolved poses, in parallel, for export.
package bake

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/editor"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
)

// Frame is the resolved output of one timeline frame.
type Frame struct {
	Frame int

	// Poses maps an actor's entity id to its pose at Frame.
	Poses map[int]*animator.Pose
}

// baker implements the Baker interface.
type baker struct {
	// pool is created once and reused by every Bake call. A WaitGroup gives the per-bake barrier
	// because pool.Wait blocks until workers go idle, which they never do between bakes.
	pool      worker.DynamicWorkerPool
	workers   int
	queueSize int

	start int
	end   int

	profiler *profiler.Profiler
	logger   *slog.Logger
}

// Baker renders a document's timeline frame by frame into poses. Frames are independent: each is a
// pure function of the timeline snapshot, the clip library and the frame number, so they are
// evaluated concurrently and returned in frame order.
type Baker interface {
	// Bake evaluates every frame of the document's open timeline.
	// The timeline is deep-copied first, the clip library is shared read-only, and the document is
	// evaluated once on the caller's goroutine so transform rows have written their keys into actor
	// clips. The document must not tick while a bake runs.
	//
	// Parameters:
	//   - ctx: cancels the bake between frames
	//   - doc: the document to bake
	//
	// Returns:
	//   - []Frame: one frame per timeline frame in the baked range, in order
	//   - error: ErrEmptyRange, ErrFrameFailed, a snapshot error or the context's error
	Bake(ctx context.Context, doc editor.Document) ([]Frame, error)

	// Close stops the worker pool. The Baker must not be used afterwards.
	Close()
}

var _ Baker = &baker{}

// NewBaker creates a new Baker with the provided options.
// Defaults: one worker per CPU minus one, a queue of 256 frames and the timeline's full range.
//
// Parameters:
//   - options: functional options for baker configuration
//
// Returns:
//   - Baker: the new baker
func NewBaker(options ...BakerBuilderOption) Baker {
	b := &baker{
		workers:   max(runtime.NumCPU()-1, 1),
		queueSize: 256,
		end:       -1,
		logger:    slog.Default(),
	}

	for _, opt := range options {
		opt(b)
	}

	b.pool = worker.NewDynamicWorkerPool(b.workers, b.queueSize, time.Second)
	return b
}

// target is one skeleton resolved per frame.
type target struct {
	id        int
	skel      *model.Skeleton
	instances []*animator.StackedClipInstance

	// clip is set on animation timelines, which sample the edited clip directly.
	clip *model.AnimationClip

	// hold is used for frames no instance covers.
	hold animator.Pose
}

func (b *baker) Bake(ctx context.Context, doc editor.Document) ([]Frame, error) {
	doc.Evaluate()

	snapshot, err := doc.Sequencer().Clone()
	if err != nil {
		return nil, fmt.Errorf("bake %s: snapshot timeline: %w", doc.Name(), err)
	}

	start, end := b.start, b.end
	if end < 0 {
		end = snapshot.FrameMax()
	}
	if start < snapshot.FrameMin() {
		start = snapshot.FrameMin()
	}
	if end < start {
		return nil, fmt.Errorf("bake %s: frames %d..%d: %w", doc.Name(), start, end, ErrEmptyRange)
	}

	targets := b.targets(doc, snapshot)
	anim := doc.Animator()
	frames := make([]Frame, end-start+1)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := range frames {
		if ctx.Err() != nil {
			break
		}
		idx := i
		f := start + i
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: f,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = fmt.Errorf("frame %d: %v: %w", f, r, ErrFrameFailed)
						}
						mu.Unlock()
					}
				}()
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				frames[idx] = evaluate(anim, targets, f)
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bake %s: %w", doc.Name(), err)
	}
	if firstErr != nil {
		return nil, fmt.Errorf("bake %s: %w", doc.Name(), firstErr)
	}

	if b.profiler != nil {
		b.profiler.AddBakedFrames(len(frames))
	}
	b.logger.Info("bake finished", "document", doc.Name(), "frames", len(frames), "actors", len(targets))
	return frames, nil
}

// targets collects the skeletons the snapshot drives.
func (b *baker) targets(doc editor.Document, snapshot timeline.Sequencer) []target {
	if snapshot.Scope() == timeline.ScopeAnimation {
		obj, err := doc.Scene().Object(doc.Editing())
		if err != nil || obj.Skeleton() == nil || obj.Clip() == nil {
			b.logger.Warn("animation timeline has no editable clip", "document", doc.Name(), "entity", doc.Editing())
			return nil
		}
		return []target{{id: obj.ID(), skel: obj.Skeleton(), clip: obj.Clip()}}
	}

	var out []target
	for _, row := range snapshot.Tracks() {
		if row.Missing || row.Type != timeline.TrackActor {
			continue
		}
		obj, err := doc.Scene().Object(row.ID)
		if err != nil {
			b.logger.Warn("bake skips a missing actor", "track", row.Name, "id", row.ID)
			continue
		}
		if !obj.Enabled() || obj.Skeleton() == nil {
			continue
		}
		out = append(out, target{
			id:        obj.ID(),
			skel:      obj.Skeleton(),
			instances: animator.BuildInstances(row.SubTracks, doc.Library(), b.logger),
			hold:      *doc.Pose(obj.ID()),
		})
	}
	return out
}

// evaluate resolves every target at frame f.
func evaluate(anim animator.Animator, targets []target, f int) Frame {
	out := Frame{Frame: f, Poses: make(map[int]*animator.Pose, len(targets))}
	clock := &animator.Clock{CurrentTime: float32(f)}
	for _, t := range targets {
		pose := animator.NewPose()
		switch {
		case t.clip != nil:
			anim.SampleClip(t.skel, t.clip, clock.CurrentTime, pose)
		case !anim.ResolvePose(t.skel, t.instances, clock, pose):
			*pose = t.hold
		}
		out.Poses[t.id] = pose
	}
	return out
}

func (b *baker) Close() {
	b.pool.Stop()
}
