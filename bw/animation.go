package bw

import (
	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
)

const AnimationVersion = 3

// SampleChannel evaluates a bone channel at frames frameStart..frameEnd
// inclusive, producing one key per frame with
// time = (frame - frameStart) / fps. Positions and scales interpolate
// linearly between surrounding keys, rotations by normalized lerp along
// the shorter arc. Missing channels default to the identity transform.
func SampleChannel(ch *Channel, frameStart, frameEnd, fps int) []TransformKey {
	if fps <= 0 {
		fps = 30
	}
	numKeys := frameEnd - frameStart + 1
	if numKeys < 1 {
		numKeys = 1
	}
	keys := make([]TransformKey, numKeys)
	for i := 0; i < numKeys; i++ {
		t := float32(i) / float32(fps)
		keys[i] = TransformKey{
			Time:     t,
			Position: samplePosition(ch, t),
			Rotation: sampleRotation(ch, t),
			Scale:    sampleScale(ch, t),
		}
	}
	return keys
}

func samplePosition(ch *Channel, t float32) *geom.Vector3 {
	if ch == nil || len(ch.PositionKeys) == 0 {
		return geom.NewVector3(0, 0, 0)
	}
	a, b, f := surroundingVector(ch.PositionKeys, t)
	return a.Value.Scale(1 - f).Add(b.Value.Scale(f))
}

func sampleScale(ch *Channel, t float32) *geom.Vector3 {
	if ch == nil || len(ch.ScaleKeys) == 0 {
		return geom.NewVector3(1, 1, 1)
	}
	a, b, f := surroundingVector(ch.ScaleKeys, t)
	return a.Value.Scale(1 - f).Add(b.Value.Scale(f))
}

func sampleRotation(ch *Channel, t float32) *geom.Quaternion {
	if ch == nil || len(ch.RotationKeys) == 0 {
		return geom.NewIdentityQuaternion()
	}
	keys := ch.RotationKeys
	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if t >= last.Time {
		return last.Value
	}
	for i := 1; i < len(keys); i++ {
		if keys[i].Time >= t {
			prev := keys[i-1]
			f := fraction(prev.Time, keys[i].Time, t)
			return prev.Value.Nlerp(keys[i].Value, f)
		}
	}
	return last.Value
}

func surroundingVector(keys []VectorKey, t float32) (VectorKey, VectorKey, float32) {
	if t <= keys[0].Time {
		return keys[0], keys[0], 0
	}
	last := keys[len(keys)-1]
	if t >= last.Time {
		return last, last, 0
	}
	for i := 1; i < len(keys); i++ {
		if keys[i].Time >= t {
			return keys[i-1], keys[i], fraction(keys[i-1].Time, keys[i].Time, t)
		}
	}
	return last, last, 0
}

func fraction(t0, t1, t float32) float32 {
	if t1 <= t0 {
		return 0
	}
	return (t - t0) / (t1 - t0)
}

// WriteAnimation writes the animation and cuetrack sections. Each bone
// track carries the fixed-width bone name, a key count and the sampled
// keys as (time, position, rotation wxyz, scale). The cue section is
// written even when the clip is empty, with count zero.
func WriteAnimation(w *datasection.BinSectionWriter, anim *Animation) error {
	if err := w.Begin("animation"); err != nil {
		return err
	}
	w.WriteU32(AnimationVersion)
	name := "EmptyAnim"
	var channels []*Channel
	var duration float32
	frameStart, frameEnd, fps := 0, 0, 30
	if anim != nil {
		if anim.Name != "" {
			name = anim.Name
		}
		channels = anim.Channels
		duration = anim.Duration()
		frameStart, frameEnd = anim.FrameStart, anim.FrameEnd
		if anim.FPS > 0 {
			fps = anim.FPS
		}
	}
	w.WriteStringFixed(name, NameFieldLen)
	w.WriteF32(duration)
	w.WriteU32(uint32(len(channels)))
	for _, ch := range channels {
		w.WriteStringFixed(ch.BoneName, NameFieldLen)
		keys := SampleChannel(ch, frameStart, frameEnd, fps)
		w.WriteU32(uint32(len(keys)))
		for _, k := range keys {
			w.WriteF32(k.Time)
			w.WriteF32(k.Position.X)
			w.WriteF32(k.Position.Y)
			w.WriteF32(k.Position.Z)
			w.WriteF32(k.Rotation.W)
			w.WriteF32(k.Rotation.X)
			w.WriteF32(k.Rotation.Y)
			w.WriteF32(k.Rotation.Z)
			w.WriteF32(k.Scale.X)
			w.WriteF32(k.Scale.Y)
			if err := w.WriteF32(k.Scale.Z); err != nil {
				return err
			}
		}
	}
	w.WriteU32(0)
	if err := w.WriteU8(0); err != nil {
		return err
	}
	if err := w.End("animation"); err != nil {
		return err
	}

	if err := w.Begin("cuetrack"); err != nil {
		return err
	}
	var cues []CueEvent
	if anim != nil {
		cues = anim.CueEvents
	}
	w.WriteU32(uint32(len(cues)))
	for _, ev := range cues {
		w.WriteF32(ev.Time)
		w.WriteCString(ev.Label)
		if err := w.WriteCString(ev.Param); err != nil {
			return err
		}
	}
	return w.End("cuetrack")
}
