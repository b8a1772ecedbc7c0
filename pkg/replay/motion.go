// Package replay turns recorded motion rows into simulator calls. A
// MotionData holds the parallel pose/time/instance streams of one
// query result; a Player walks them in stamp order against a scene,
// pacing itself to the recorded timing.
package replay

import (
	"sort"

	"github.com/knowrobco/neemsim/pkg/neem"
)

// MotionData holds the streams needed to replay recorded motion. The
// three slices are parallel: Poses[i] is where Instances[i] was at
// Times[i]. Rows are expected in ascending stamp order, which is how
// the motion replay query returns them.
type MotionData struct {
	Poses     []neem.Pose
	Times     []float64
	Instances []string
}

// FromResult extracts motion data from a motion replay query result.
func FromResult(res *neem.Result) MotionData {
	return MotionData{
		Poses:     res.Poses(),
		Times:     res.Stamps(),
		Instances: res.Participants(false),
	}
}

// Len returns the number of recorded samples.
func (d MotionData) Len() int { return len(d.Poses) }

// UniqueInstances lists the distinct entity instances in first-seen order.
func (d MotionData) UniqueInstances() []string {
	seen := make(map[string]bool, len(d.Instances))
	var out []string
	for _, inst := range d.Instances {
		if seen[inst] {
			continue
		}
		seen[inst] = true
		out = append(out, inst)
	}
	return out
}

// FilterByInstance keeps the samples of one entity instance.
func (d MotionData) FilterByInstance(instance string) MotionData {
	var out MotionData
	for i, inst := range d.Instances {
		if inst != instance {
			continue
		}
		out.Poses = append(out.Poses, d.Poses[i])
		out.Times = append(out.Times, d.Times[i])
		out.Instances = append(out.Instances, inst)
	}
	return out
}

// Resample rebuilds the streams on a fixed time step. Each instance is
// resampled over its own recorded range, positions interpolated
// linearly and orientations slerped between the neighboring samples;
// nothing is extrapolated past an instance's first or last sample. A
// non-positive step returns the data unchanged.
func (d MotionData) Resample(step float64) MotionData {
	if step <= 0 || d.Len() == 0 {
		return d
	}

	type sample struct {
		pose     neem.Pose
		time     float64
		instance string
	}
	var samples []sample

	for _, instance := range d.UniqueInstances() {
		src := d.FilterByInstance(instance)
		n := len(src.Times)
		j := 0
		for k := 0; ; k++ {
			t := src.Times[0] + float64(k)*step
			if t > src.Times[n-1] {
				break
			}
			for j+1 < n && src.Times[j+1] <= t {
				j++
			}
			pose := src.Poses[j]
			if j+1 < n {
				u := (t - src.Times[j]) / (src.Times[j+1] - src.Times[j])
				pose = src.Poses[j].Interpolate(src.Poses[j+1], u)
			}
			samples = append(samples, sample{pose: pose, time: t, instance: instance})
		}
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].time < samples[j].time })

	out := MotionData{
		Poses:     make([]neem.Pose, len(samples)),
		Times:     make([]float64, len(samples)),
		Instances: make([]string, len(samples)),
	}
	for i, s := range samples {
		out.Poses[i] = s.pose
		out.Times[i] = s.time
		out.Instances[i] = s.instance
	}
	return out
}

// LatestPoseBefore returns the most recent pose of an instance at or
// before the given stamp. The second return is false when the instance
// has no sample in that range.
func (d MotionData) LatestPoseBefore(instance string, stamp float64) (neem.Pose, bool) {
	var (
		latest neem.Pose
		found  bool
	)
	for i, inst := range d.Instances {
		if inst != instance || d.Times[i] > stamp {
			continue
		}
		latest = d.Poses[i]
		found = true
	}
	return latest, found
}

// LatestPose returns the last recorded pose of an instance.
func (d MotionData) LatestPose(instance string) (neem.Pose, bool) {
	var (
		latest neem.Pose
		found  bool
	)
	for i, inst := range d.Instances {
		if inst != instance {
			continue
		}
		latest = d.Poses[i]
		found = true
	}
	return latest, found
}
