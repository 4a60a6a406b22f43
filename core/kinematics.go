package core

// separationEpsilon is the distance below which two bodies count as
// co-located. Seek kinematics clamp to "arrived" instead of normalizing a
// near-zero separation vector.
const separationEpsilon = 1e-6

// RadialPosition places a body on the fixed ray from target along dir, at a
// distance interpolated linearly from startDist down to floorDist as elapsed
// runs from 0 to duration. Progress saturates at 1, so the body parks at the
// floor distance once the duration has passed.
//
// dir must be a unit vector pointing from the target toward the body's
// origin. Pure function of its inputs.
func RadialPosition(target, dir Vec3, startDist, floorDist, elapsed, duration float64) Vec3 {
	progress := 1.0
	if duration > 0 && elapsed < duration {
		progress = elapsed / duration
	}
	if progress < 0 {
		progress = 0
	}
	dist := startDist + (floorDist-startDist)*progress
	return target.Add(dir.Scale(dist))
}

// Seek moves pos toward the live target position at the given speed over dt
// seconds: the separation vector is normalized and scaled by speed*dt. It
// returns the new position and whether the body has arrived.
//
// Sub-epsilon separations, and steps that would overshoot the target, clamp
// to the target position and report arrival.
func Seek(pos, target Vec3, speed, dt float64) (Vec3, bool) {
	sep := target.Sub(pos)
	dist := sep.Norm()
	if dist < separationEpsilon {
		return target, true
	}
	step := speed * dt
	if step >= dist {
		return target, true
	}
	return pos.Add(sep.Scale(step / dist)), false
}
