// Package world provides an in-memory scene. It tracks object poses
// and attachments without any physics, which is all motion replay and
// the tests need.
package world

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/sim"
)

// World implements sim.Simulator using an in-memory map.
type World struct {
	// mu is a read write sync mutex for locking the scene maps
	mu sync.RWMutex

	// objects maps object name to its current state
	objects map[string]sim.Object

	// attachments maps a child object to the parent it follows
	attachments map[string]string
}

// New creates an empty scene.
func New() *World {
	return &World{
		objects:     make(map[string]sim.Object),
		attachments: make(map[string]string),
	}
}

// Spawn adds an object to the scene, or moves it if already present.
func (w *World) Spawn(_ context.Context, obj sim.Object) error {
	if obj.Name == "" {
		return errors.New("cannot spawn object without a name")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.objects[obj.Name]; ok {
		existing.Pose = obj.Pose
		w.objects[obj.Name] = existing
		return nil
	}

	w.objects[obj.Name] = obj
	return nil
}

// SetPose moves an object. Attached children are translated by the same
// world-frame offset.
func (w *World) SetPose(_ context.Context, name string, pose neem.Pose) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	obj, ok := w.objects[name]
	if !ok {
		return sim.ErrObjectNotFound
	}

	delta := r3.Sub(pose.Position, obj.Pose.Position)
	obj.Pose = pose
	w.objects[name] = obj

	for child, parent := range w.attachments {
		if parent != name {
			continue
		}
		childObj, ok := w.objects[child]
		if !ok {
			continue
		}
		childObj.Pose.Position = r3.Add(childObj.Pose.Position, delta)
		w.objects[child] = childObj
	}

	return nil
}

// Pose returns the current pose of an object.
func (w *World) Pose(_ context.Context, name string) (neem.Pose, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	obj, ok := w.objects[name]
	if !ok {
		return neem.Pose{}, sim.ErrObjectNotFound
	}

	return obj.Pose, nil
}

// Attach fixes child to parent. Both must be in the scene.
func (w *World) Attach(_ context.Context, parent, child string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.objects[parent]; !ok {
		return sim.ErrObjectNotFound
	}
	if _, ok := w.objects[child]; !ok {
		return sim.ErrObjectNotFound
	}

	w.attachments[child] = parent
	return nil
}

// Detach releases a child. Detaching an unattached child is a no-op.
func (w *World) Detach(_ context.Context, child string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.attachments, child)
	return nil
}

// Remove deletes an object and any attachments referencing it.
func (w *World) Remove(_ context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.objects[name]; !ok {
		return sim.ErrObjectNotFound
	}

	delete(w.objects, name)
	delete(w.attachments, name)
	for child, parent := range w.attachments {
		if parent == name {
			delete(w.attachments, child)
		}
	}

	return nil
}

// Objects lists the scene contents sorted by name.
func (w *World) Objects(_ context.Context) ([]sim.Object, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]sim.Object, 0, len(w.objects))
	for _, obj := range w.objects {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// AttachedTo reports the parent a child currently follows.
func (w *World) AttachedTo(child string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	parent, ok := w.attachments[child]
	return parent, ok
}

// Close clears the scene.
func (w *World) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.objects = make(map[string]sim.Object)
	w.attachments = make(map[string]string)
	return nil
}
