package mesh

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDescription is returned when no description file could be
// resolved through any source.
var ErrNoDescription = errors.New("no description found")

// environmentDescriptions maps recorded environment names to the URDF
// the simulator loads for them.
var environmentDescriptions = map[string]string{
	"Kitchen": "apartment.urdf",
}

// performerDescriptions maps robot name fragments to URDF files.
// Ordered, since "ur5e" must match before "ur5".
var performerDescriptions = []struct {
	fragment string
	urdf     string
}{
	{"pr2", "pr2.urdf"},
	{"boxy", "boxy.urdf"},
	{"hsrb", "hsrb.urdf"},
	{"donbot", "iai_donbot.urdf"},
	{"tiago", "tiago_dual.urdf"},
	{"ur5e", "ur5e_without_gripper.urdf"},
	{"ur5", "ur5_robotiq.urdf"},
}

// shapeFallbacks approximates participants whose own mesh could not be
// found with a stand-in of the same shape. Ordered so that more
// specific fragments win.
var shapeFallbacks = []struct {
	fragment string
	mesh     string
}{
	{"cup", "jeroen_cup.stl"},
	{"bowl", "bowl.stl"},
	{"pot", "bowl.stl"},
	{"pitcher", "Static_MilkPitcher.stl"},
	{"milk", "milk.stl"},
	{"bottle", "Static_CokeBottle.stl"},
	{"cereal", "cereal.stl"},
	{"spoon", "spoon.stl"},
	{"plate", "bowl.stl"},
}

// EnvironmentDescription returns the URDF for a recorded environment
// name.
func EnvironmentDescription(environment string) (string, error) {
	if urdf, ok := environmentDescriptions[environment]; ok {
		return urdf, nil
	}
	return "", fmt.Errorf("environment %q: %w", environment, ErrNoDescription)
}

// PerformerDescription returns the URDF for a performer whose name
// contains a known robot fragment.
func PerformerDescription(performer string) (string, error) {
	lower := strings.ToLower(performer)
	for _, d := range performerDescriptions {
		if strings.Contains(lower, d.fragment) {
			return d.urdf, nil
		}
	}
	return "", fmt.Errorf("performer %q: %w", performer, ErrNoDescription)
}

// ShapeFallback returns the stand-in mesh for a participant whose own
// mesh is unavailable.
func ShapeFallback(participant string) (string, error) {
	lower := strings.ToLower(participant)
	for _, f := range shapeFallbacks {
		if strings.Contains(lower, f.fragment) {
			return f.mesh, nil
		}
	}
	return "", fmt.Errorf("participant %q: %w", participant, ErrNoDescription)
}
