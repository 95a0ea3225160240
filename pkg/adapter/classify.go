package adapter

import (
	"strings"

	"github.com/matzehuels/blendview/pkg/snapshot"
)

// knownKinds maps playable type names hosts commonly report.
var knownKinds = map[string]snapshot.Kind{
	"AnimationClipPlayable":           snapshot.KindLeafClip,
	"AudioClipPlayable":               snapshot.KindLeafClip,
	"AnimationMixerPlayable":          snapshot.KindMixer,
	"AnimationLayerMixerPlayable":     snapshot.KindMixer,
	"AudioMixerPlayable":              snapshot.KindMixer,
	"AnimatorControllerPlayable":      snapshot.KindGeneric,
	"AnimationScriptPlayable":         snapshot.KindGeneric,
	"AnimationMotionXToDeltaPlayable": snapshot.KindGeneric,
	"AnimationOffsetPlayable":         snapshot.KindGeneric,
	"AnimationPosePlayable":           snapshot.KindGeneric,
	"AnimationRemoveScalePlayable":    snapshot.KindGeneric,
	"ScriptPlayable":                  snapshot.KindGeneric,
	"TimelinePlayable":                snapshot.KindGeneric,
}

// Classify maps a playable's declared type name to a rendering kind.
// Known names win; otherwise a name mentioning a mixer or blend is a mixer
// and a name mentioning a clip is a clip. Everything else is generic.
//
// New kinds are added here and in snapshot.Kind, nowhere else.
func Classify(typeName string) snapshot.Kind {
	if k, ok := knownKinds[typeName]; ok {
		return k
	}
	lower := strings.ToLower(typeName)
	switch {
	case strings.Contains(lower, "mixer"), strings.Contains(lower, "blend"):
		return snapshot.KindMixer
	case strings.Contains(lower, "clip"):
		return snapshot.KindLeafClip
	default:
		return snapshot.KindGeneric
	}
}
