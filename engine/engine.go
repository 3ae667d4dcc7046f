package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/editor"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/skinning"
)

var (
	// ErrRunning is returned by Run when the engine loop is already running.
	ErrRunning = errors.New("engine is already running")

	// ErrTickPanic is returned by Run when a tick panicked.
	ErrTickPanic = errors.New("engine tick panicked")
)

// engine implements the Engine interface.
// Drives every open document from a single fixed-rate tick goroutine.
type engine struct {
	mu sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup
	err     error

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	documents map[string]editor.Document
	sink      skinning.Sink

	logger *slog.Logger
}

// Engine is the main entry point for playback.
// It owns the tick loop that advances documents, resolves their poses and hands the skinning
// palettes to a sink.
type Engine interface {
	// Profiler returns the profiler the engine reports to.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables the periodic profiler summary in the log.
	EnableProfiler()

	// DisableProfiler disables the periodic profiler summary.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called after the documents have ticked.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddDocument registers a document under its name, replacing any document with the same name.
	//
	// Parameters:
	//   - doc: the document to tick
	AddDocument(doc editor.Document)

	// RemoveDocument unregisters a document.
	//
	// Parameters:
	//   - name: the document name
	RemoveDocument(name string)

	// Document returns the document registered under name, or nil.
	//
	// Parameters:
	//   - name: the document name
	//
	// Returns:
	//   - editor.Document: the document, or nil if not found
	Document(name string) editor.Document

	// Documents returns the registered documents ordered by name.
	//
	// Returns:
	//   - []editor.Document: the documents
	Documents() []editor.Document

	// Step runs one tick synchronously: every document ticks by dt, its metrics are recorded and
	// the poses of its skinned actors are uploaded to the sink.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Step(dt float32)

	// Run starts the tick loop and blocks until ctx is done or Quit is called.
	//
	// Parameters:
	//   - ctx: stops the loop when done
	//
	// Returns:
	//   - error: ErrRunning, or ErrTickPanic if a tick panicked
	Run(ctx context.Context) error

	// Quit signals the tick loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
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
		documents:       make(map[string]editor.Document),
		engineTickRate:  time.Second / 60,
		logger:          slog.Default(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	return e
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrRunning
	}
	e.running = true
	e.err = nil
	e.mu.Unlock()

	e.wg.Add(1)
	go e.handleEngine(ctx)
	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	return e.err
}

// Quit signals the tick goroutine to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal the tick goroutine to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel and exits when ctx is done or the quit
// channel is closed. A panicking tick stops the loop instead of crashing the process.
func (e *engine) handleEngine(ctx context.Context) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tick goroutine recovered from panic", "panic", r)
			e.mu.Lock()
			e.err = fmt.Errorf("%v: %w", r, ErrTickPanic)
			e.mu.Unlock()
			e.signalQuit()
		}
	}()

	e.mu.Lock()
	rate := e.engineTickRate
	e.mu.Unlock()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

func (e *engine) Step(dt float32) {
	for _, doc := range e.Documents() {
		start := time.Now()
		doc.Tick(dt)
		e.profiler.ObserveTick(doc.Name(), time.Since(start))
		e.profiler.SetMissingTracks(doc.Name(), missingTracks(doc))
		if e.sink != nil {
			e.upload(doc)
		}
	}

	if e.tickCallback != nil {
		e.tickCallback(dt)
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}
}

// upload hands the resolved pose of every enabled skinned entity to the sink.
func (e *engine) upload(doc editor.Document) {
	for _, obj := range doc.Scene().Objects() {
		if !obj.Enabled() || obj.Skeleton() == nil {
			continue
		}
		if err := e.sink.Upload(obj.ID(), doc.Pose(obj.ID())); err != nil {
			e.logger.Warn("palette upload failed", "document", doc.Name(), "entity", obj.ID(), "error", err)
		}
	}
}

// missingTracks counts the rows of a document flagged missing.
func missingTracks(doc editor.Document) int {
	n := 0
	for _, row := range doc.Sequencer().Tracks() {
		if row.Missing {
			n++
		}
	}
	return n
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	running := e.running
	if !running {
		e.engineTickRate = newRate
	}
	e.mu.Unlock()
	if !running {
		return
	}

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
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) AddDocument(doc editor.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.documents[doc.Name()] = doc
}

func (e *engine) RemoveDocument(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.documents, name)
}

func (e *engine) Document(name string) editor.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.documents[name]
}

func (e *engine) Documents() []editor.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := common.SortedKeys(e.documents)
	docs := make([]editor.Document, len(names))
	for i, name := range names {
		docs[i] = e.documents[name]
	}
	return docs
}
