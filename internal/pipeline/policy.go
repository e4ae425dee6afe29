package pipeline

import (
	"vidforge/internal/probe"
)

// Kind identifies one derived artifact of an upload.
type Kind string

const (
	KindThumbnail Kind = "thumbnail"
	KindCanonical Kind = "canonical"
	KindResized   Kind = "resized"
	KindAudio     Kind = "audio"
)

// kindOrder is the deterministic evaluation order for commit decisions and
// first-fatal-cause reporting.
var kindOrder = []Kind{KindThumbnail, KindCanonical, KindResized, KindAudio}

// AllKinds returns the ordered list of artifact kinds.
func AllKinds() []Kind {
	cp := make([]Kind, len(kindOrder))
	copy(cp, kindOrder)
	return cp
}

// ArtifactName returns the blob file name produced for the kind.
func (k Kind) ArtifactName() string {
	switch k {
	case KindThumbnail:
		return "thumbnail.png"
	case KindCanonical:
		return "canonical.mp4"
	case KindResized:
		return "resized.mp4"
	case KindAudio:
		return "audio.mp3"
	default:
		return string(k)
	}
}

// Policy decides which artifacts a probed input must produce and which of
// those gate the commit decision.
type Policy struct {
	// StrictAudio promotes audio extraction to hard-required. The default
	// treats an unextractable audio stream as a logged degradation, not a
	// job failure.
	StrictAudio bool
}

// RequiredArtifacts returns the artifact kinds to produce for the given
// stream composition. Thumbnail, canonical, and resized are always
// required; audio only when the input carries at least one audio stream.
func (p Policy) RequiredArtifacts(info probe.StreamInfo) []Kind {
	kinds := []Kind{KindThumbnail, KindCanonical, KindResized}
	if info.HasAudio {
		kinds = append(kinds, KindAudio)
	}
	return kinds
}

// HardRequired reports whether a failure of the kind aborts the whole job.
func (p Policy) HardRequired(kind Kind) bool {
	if kind == KindAudio {
		return p.StrictAudio
	}
	return true
}
