// Package redo re-executes recorded episode tasks as abstract actions
// against a simulator: instead of replaying raw pose samples, each task
// type maps to a short sequence of scene operations (navigate, attach,
// move, detach).
package redo

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/sim"
)

// liftHeight is how far a picked object is raised off its resting pose.
const liftHeight = 0.1

// approachDistance is how far from a target object the robot stops when
// navigating to it.
const approachDistance = 0.5

// Action is one redoable abstract action.
type Action interface {
	// Category is the action category the recorded task mapped to.
	Category() neem.Action

	// Perform executes the action against the scene.
	Perform(ctx context.Context, s sim.Simulator) error
}

// ParkArms brings the robot into its neutral manipulation posture. The
// scene model has no articulated joints, so this only checks the robot
// is present.
type ParkArms struct {
	Robot string
}

func (a ParkArms) Category() neem.Action { return neem.ActionParkArms }

func (a ParkArms) Perform(ctx context.Context, s sim.Simulator) error {
	_, err := s.Pose(ctx, a.Robot)
	return err
}

// MoveTorso raises or lowers the robot torso. Joint-less at this level,
// it checks the robot is present.
type MoveTorso struct {
	Robot  string
	Height float64
}

func (a MoveTorso) Category() neem.Action { return neem.ActionMoveTorso }

func (a MoveTorso) Perform(ctx context.Context, s sim.Simulator) error {
	_, err := s.Pose(ctx, a.Robot)
	return err
}

// SetGripper opens or closes the gripper. Opening releases the held
// object when one is named.
type SetGripper struct {
	Robot  string
	Open   bool
	Object string
}

func (a SetGripper) Category() neem.Action { return neem.ActionSetGripper }

func (a SetGripper) Perform(ctx context.Context, s sim.Simulator) error {
	if _, err := s.Pose(ctx, a.Robot); err != nil {
		return err
	}
	if a.Open && a.Object != "" {
		return s.Detach(ctx, a.Object)
	}
	return nil
}

// LookAt turns the robot base toward a target position.
type LookAt struct {
	Robot  string
	Target r3.Vec
}

func (a LookAt) Category() neem.Action { return neem.ActionLookAt }

func (a LookAt) Perform(ctx context.Context, s sim.Simulator) error {
	pose, err := s.Pose(ctx, a.Robot)
	if err != nil {
		return err
	}

	pose.Orientation = yawToward(pose.Position, a.Target)
	return s.SetPose(ctx, a.Robot, pose)
}

// Navigate drives the robot base to a target pose.
type Navigate struct {
	Robot  string
	Target neem.Pose
}

func (a Navigate) Category() neem.Action { return neem.ActionNavigate }

func (a Navigate) Perform(ctx context.Context, s sim.Simulator) error {
	return s.SetPose(ctx, a.Robot, a.Target)
}

// Detect checks that an object is present in the scene and visible from
// the robot.
type Detect struct {
	Robot  string
	Object string
}

func (a Detect) Category() neem.Action { return neem.ActionDetect }

func (a Detect) Perform(ctx context.Context, s sim.Simulator) error {
	if _, err := s.Pose(ctx, a.Robot); err != nil {
		return err
	}
	_, err := s.Pose(ctx, a.Object)
	return err
}

// Grasping attaches an object to the robot without moving it.
type Grasping struct {
	Robot  string
	Object string
	Grasps []neem.Grasp
}

func (a Grasping) Category() neem.Action { return neem.ActionGrasping }

func (a Grasping) Perform(ctx context.Context, s sim.Simulator) error {
	return s.Attach(ctx, a.Robot, a.Object)
}

// Release lets go of a held object.
type Release struct {
	Robot  string
	Object string
}

func (a Release) Category() neem.Action { return neem.ActionRelease }

func (a Release) Perform(ctx context.Context, s sim.Simulator) error {
	return s.Detach(ctx, a.Object)
}

// PickUp approaches an object, grasps it and lifts it.
type PickUp struct {
	Robot  string
	Object string
	Grasps []neem.Grasp
}

func (a PickUp) Category() neem.Action { return neem.ActionPickUp }

func (a PickUp) Perform(ctx context.Context, s sim.Simulator) error {
	target, err := s.Pose(ctx, a.Object)
	if err != nil {
		return err
	}

	if err := approach(ctx, s, a.Robot, target.Position); err != nil {
		return err
	}
	if err := s.Attach(ctx, a.Robot, a.Object); err != nil {
		return err
	}

	target.Position.Z += liftHeight
	return s.SetPose(ctx, a.Object, target)
}

// Place sets a held object down at a target pose and releases it.
type Place struct {
	Robot  string
	Object string
	Target neem.Pose
}

func (a Place) Category() neem.Action { return neem.ActionPlace }

func (a Place) Perform(ctx context.Context, s sim.Simulator) error {
	if err := s.SetPose(ctx, a.Object, a.Target); err != nil {
		return err
	}
	return s.Detach(ctx, a.Object)
}

// Transport carries an object to a target pose: pick up, navigate,
// place.
type Transport struct {
	Robot  string
	Object string
	Target neem.Pose
}

func (a Transport) Category() neem.Action { return neem.ActionTransport }

func (a Transport) Perform(ctx context.Context, s sim.Simulator) error {
	pick := PickUp{Robot: a.Robot, Object: a.Object}
	if err := pick.Perform(ctx, s); err != nil {
		return err
	}
	if err := approach(ctx, s, a.Robot, a.Target.Position); err != nil {
		return err
	}
	place := Place{Robot: a.Robot, Object: a.Object, Target: a.Target}
	return place.Perform(ctx, s)
}

// OpenContainer opens a container object, modelled as detaching
// anything held and checking both bodies exist.
type OpenContainer struct {
	Robot  string
	Object string
}

func (a OpenContainer) Category() neem.Action { return neem.ActionOpen }

func (a OpenContainer) Perform(ctx context.Context, s sim.Simulator) error {
	if _, err := s.Pose(ctx, a.Robot); err != nil {
		return err
	}
	_, err := s.Pose(ctx, a.Object)
	return err
}

// CloseContainer closes a container object.
type CloseContainer struct {
	Robot  string
	Object string
}

func (a CloseContainer) Category() neem.Action { return neem.ActionClose }

func (a CloseContainer) Perform(ctx context.Context, s sim.Simulator) error {
	if _, err := s.Pose(ctx, a.Robot); err != nil {
		return err
	}
	_, err := s.Pose(ctx, a.Object)
	return err
}

// approach drives the robot to a stop short of target, facing it.
func approach(ctx context.Context, s sim.Simulator, robot string, target r3.Vec) error {
	pose, err := s.Pose(ctx, robot)
	if err != nil {
		return fmt.Errorf("redo: robot %q: %w", robot, err)
	}

	dir := r3.Sub(target, pose.Position)
	dir.Z = 0
	if norm := r3.Norm(dir); norm > approachDistance {
		dir = r3.Scale((norm-approachDistance)/norm, dir)
		pose.Position = r3.Add(pose.Position, dir)
	}
	pose.Orientation = yawToward(pose.Position, target)

	return s.SetPose(ctx, robot, pose)
}

// yawToward returns the orientation facing from one position toward
// another, rotating about the vertical axis only.
func yawToward(from, to r3.Vec) neem.Quaternion {
	yaw := math.Atan2(to.Y-from.Y, to.X-from.X)
	return neem.Quaternion{Z: math.Sin(yaw / 2), W: math.Cos(yaw / 2)}
}
