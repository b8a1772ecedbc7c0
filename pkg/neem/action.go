package neem

import "strings"

// Action is an abstract action category a recorded task can be redone as.
type Action string

const (
	ActionGrasping   Action = "grasping"
	ActionParkArms   Action = "park_arms"
	ActionSetGripper Action = "set_gripper"
	ActionLookAt     Action = "look_at"
	ActionRelease    Action = "release"
	ActionPickUp     Action = "pick_up"
	ActionPlace      Action = "place"
	ActionGrip       Action = "grip"
	ActionClose      Action = "close"
	ActionOpen       Action = "open"
	ActionNavigate   Action = "navigate"
	ActionTransport  Action = "transport"
	ActionDetect     Action = "detect"
	ActionMoveTorso  Action = "move_torso"
	ActionPour       Action = "pour"
)

// actionForTaskType maps recorded ontology task types to action categories.
var actionForTaskType = map[string]Action{
	"soma:Grasping":       ActionGrasping,
	"soma:PositioningArm": ActionParkArms,
	"soma:SettingGripper": ActionSetGripper,
	"soma:LookingAt":      ActionLookAt,
	"soma:Releasing":      ActionRelease,
	"soma:PickingUp":      ActionPickUp,
	"soma:Placing":        ActionPlace,
	"soma:Gripping":       ActionGrip,
	"soma:Closing":        ActionClose,
	"soma:Opening":        ActionOpen,
	"soma:OpeningGripper": ActionSetGripper,
	"soma:Navigating":     ActionNavigate,
	"soma:Delivering":     ActionTransport,
	"soma:Detecting":      ActionDetect,
	"soma:AssumingArmPose": ActionParkArms,
	"soma:Pouring":        ActionPour,
}

// ActionForTask maps a recorded task type onto an action category.
// The second return is false when the task type has no mapping.
func ActionForTask(taskType string) (Action, bool) {
	a, ok := actionForTaskType[taskType]
	return a, ok
}

// Grasp is a grasp direction used as a pick-up parameter.
type Grasp string

const (
	GraspFront Grasp = "front"
	GraspTop   Grasp = "top"
	GraspLeft  Grasp = "left"
	GraspRight Grasp = "right"
)

// AllGrasps lists every grasp direction, used when an episode does not
// record which one was performed.
var AllGrasps = []Grasp{GraspFront, GraspTop, GraspLeft, GraspRight}

var graspForType = map[string]Grasp{
	"soma:FrontGrasp": GraspFront,
	"soma:TopGrasp":   GraspTop,
	"soma:LeftGrasp":  GraspLeft,
	"soma:RightGrasp": GraspRight,
}

// GraspForType maps a recorded grasp parameter type onto a grasp direction.
func GraspForType(parameterType string) (Grasp, bool) {
	g, ok := graspForType[parameterType]
	return g, ok
}

// ObjectKind is a coarse classification of episode participants used when
// spawning them in the simulator.
type ObjectKind string

const (
	KindEnvironment ObjectKind = "environment"
	KindRobot       ObjectKind = "robot"
	KindHuman       ObjectKind = "human"
	KindBowl        ObjectKind = "bowl"
	KindMilk        ObjectKind = "milk"
	KindCup         ObjectKind = "cup"
	KindGeneric     ObjectKind = "generic"
)

// knownRobots are performer names that can be spawned from a bundled robot
// description.
var knownRobots = []string{"pr2", "boxy", "hsrb", "donbot", "tiago", "ur5e", "ur5"}

// IsKnownRobot reports whether the performer name contains a known robot
// name.
func IsKnownRobot(performer string) bool {
	lower := strings.ToLower(performer)
	for _, robot := range knownRobots {
		if strings.Contains(lower, robot) {
			return true
		}
	}
	return false
}

// IsHuman reports whether a performer type string describes a human agent.
func IsHuman(performerType string) bool {
	lower := strings.ToLower(performerType)
	for _, marker := range []string{"natural", "human", "person", "hand"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ObjectKindForParticipant classifies a participant by name.
func ObjectKindForParticipant(participant string) ObjectKind {
	lower := strings.ToLower(participant)
	switch {
	case strings.Contains(lower, "bowl"), strings.Contains(lower, "pot"):
		return KindBowl
	case strings.Contains(lower, "milk"):
		return KindMilk
	case strings.Contains(lower, "cup"):
		return KindCup
	default:
		return KindGeneric
	}
}

// DisplayName strips the IRI namespace prefix from an entity name, keeping
// everything after the last ':'.
func DisplayName(entity string) string {
	if i := strings.LastIndex(entity, ":"); i >= 0 {
		return entity[i+1:]
	}
	return entity
}

// IsNil reports whether an entity name is the NIL placeholder episodes
// record for tasks without a real participant.
func IsNil(entity string) bool {
	return strings.Contains(entity, "NIL")
}
