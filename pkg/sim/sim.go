// Package sim defines the simulator surface the replay and redo layers
// drive. Episode rows are turned into calls on a Simulator: spawning
// objects, streaming poses, and attaching grasped objects to their
// gripper. The world subpackage keeps the scene in memory; the bridge
// subpackage forwards calls to a running simulation process over HTTP.
package sim

import (
	"context"
	"errors"

	"github.com/knowrobco/neemsim/pkg/neem"
)

// ErrObjectNotFound is returned when an object isn't in the scene.
var ErrObjectNotFound = errors.New("object not found in scene")

// Object is one body in the scene.
type Object struct {
	// Name identifies the object in the scene and must be unique.
	Name string `json:"name"`

	// Kind classifies the object for description lookup.
	Kind neem.ObjectKind `json:"kind"`

	// Description is the path or URL of the object's mesh or URDF file.
	Description string `json:"description,omitempty"`

	// Pose is the object pose in the world frame.
	Pose neem.Pose `json:"pose"`
}

// Simulator is a running scene that objects can be spawned into and
// moved around in.
type Simulator interface {
	// Spawn adds an object to the scene. Spawning a name that already
	// exists moves the existing object instead.
	Spawn(ctx context.Context, obj Object) error

	// SetPose moves an object. Objects attached to it follow.
	SetPose(ctx context.Context, name string, pose neem.Pose) error

	// Pose returns the current pose of an object.
	Pose(ctx context.Context, name string) (neem.Pose, error)

	// Attach fixes child to parent so the child follows the parent's
	// motion, as when a gripper closes around an object.
	Attach(ctx context.Context, parent, child string) error

	// Detach releases a previously attached child.
	Detach(ctx context.Context, child string) error

	// Remove deletes an object from the scene.
	Remove(ctx context.Context, name string) error

	// Objects lists the scene contents.
	Objects(ctx context.Context) ([]Object, error)

	// Close shuts the scene down.
	Close() error
}
