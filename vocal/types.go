package vocal

import (
	"fmt"

	"github.com/RyanBlaney/sonido-vocals/algorithms/speech"
	"github.com/RyanBlaney/sonido-vocals/algorithms/tonal"
)

// VocalType classifies the delivery of a vocal segment
type VocalType int

const (
	VocalLead VocalType = iota
	VocalHarmony
	VocalBacking
	VocalRap
	VocalWhisper
	VocalShout
)

var vocalTypeNames = [...]string{"lead", "harmony", "backing", "rap", "whisper", "shout"}

func (v VocalType) String() string {
	if v < 0 || int(v) >= len(vocalTypeNames) {
		return "unknown"
	}
	return vocalTypeNames[v]
}

// MarshalText implements encoding.TextMarshaler
func (v VocalType) MarshalText() ([]byte, error) {
	if v < 0 || int(v) >= len(vocalTypeNames) {
		return nil, fmt.Errorf("invalid vocal type %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *VocalType) UnmarshalText(text []byte) error {
	for i, name := range vocalTypeNames {
		if name == string(text) {
			*v = VocalType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown vocal type %q", text)
}

// OnsetType is the linguistic granularity of an onset
type OnsetType int

const (
	OnsetPhrase OnsetType = iota
	OnsetWord
	OnsetSyllable
)

var onsetTypeNames = [...]string{"phrase", "word", "syllable"}

func (o OnsetType) String() string {
	if o < 0 || int(o) >= len(onsetTypeNames) {
		return "unknown"
	}
	return onsetTypeNames[o]
}

// MarshalText implements encoding.TextMarshaler
func (o OnsetType) MarshalText() ([]byte, error) {
	if o < 0 || int(o) >= len(onsetTypeNames) {
		return nil, fmt.Errorf("invalid onset type %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *OnsetType) UnmarshalText(text []byte) error {
	for i, name := range onsetTypeNames {
		if name == string(text) {
			*o = OnsetType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown onset type %q", text)
}

// Section names one of the five structural buckets
type Section int

const (
	SectionIntro Section = iota
	SectionVerse
	SectionChorus
	SectionBridge
	SectionOutro
)

// NumSections is the fixed number of structural buckets
const NumSections = 5

var sectionNames = [NumSections]string{"intro", "verse", "chorus", "bridge", "outro"}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return "unknown"
	}
	return sectionNames[s]
}

// MarshalText implements encoding.TextMarshaler
func (s Section) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(sectionNames) {
		return nil, fmt.Errorf("invalid section %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Section) UnmarshalText(text []byte) error {
	for i, name := range sectionNames {
		if name == string(text) {
			*s = Section(i)
			return nil
		}
	}
	return fmt.Errorf("unknown section %q", text)
}

// VocalSegment is a maximal run of frames judged vocal
type VocalSegment struct {
	Start      float64   `json:"start"`      // seconds
	End        float64   `json:"end"`        // seconds, > Start
	Confidence float64   `json:"confidence"` // mean frame probability
	Intensity  float64   `json:"intensity"`  // max frame probability
	Type       VocalType `json:"type"`

	startFrame int
	endFrame   int // inclusive
}

// Duration returns End - Start
func (s VocalSegment) Duration() float64 {
	return s.End - s.Start
}

// OnsetEvent is an energy transient inside a vocal segment
type OnsetEvent struct {
	Time       float64   `json:"time"`
	Confidence float64   `json:"confidence"`
	Type       OnsetType `json:"type"`
}

// InstrumentalSegment is a sufficiently long stretch without vocals
type InstrumentalSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// SectionInfo describes one structural bucket
type SectionInfo struct {
	Section   Section `json:"section"`
	Start     float64 `json:"start"`
	Duration  float64 `json:"duration"`
	HasVocals bool    `json:"has_vocals"`
}

// StructuralBreakdown splits the buffer into five equal named buckets
type StructuralBreakdown struct {
	Intro  SectionInfo `json:"intro"`
	Verse  SectionInfo `json:"verse"`
	Chorus SectionInfo `json:"chorus"`
	Bridge SectionInfo `json:"bridge"`
	Outro  SectionInfo `json:"outro"`
}

// Sections returns the buckets in time order
func (b StructuralBreakdown) Sections() []SectionInfo {
	return []SectionInfo{b.Intro, b.Verse, b.Chorus, b.Bridge, b.Outro}
}

// VocalCharacteristics summarises the voiced frames of a buffer
type VocalCharacteristics struct {
	MeanF0            float64 `json:"mean_f0"`        // Hz
	PitchRange        float64 `json:"pitch_range"`    // semitones
	PitchVariance     float64 `json:"pitch_variance"` // Hz^2
	MeanF1            float64 `json:"mean_f1"`
	MeanF2            float64 `json:"mean_f2"`
	MeanF3            float64 `json:"mean_f3"`
	MeanHarmonicRatio float64 `json:"mean_harmonic_ratio"`
	Jitter            float64 `json:"jitter"`
	Shimmer           float64 `json:"shimmer"`
	Breathiness       float64 `json:"breathiness"`
	Roughness         float64 `json:"roughness"` // no roughness model; always 0
	VoicedFrames      int     `json:"voiced_frames"`
}

// DefaultCharacteristics is reported when no frame is voiced
func DefaultCharacteristics() VocalCharacteristics {
	return VocalCharacteristics{}
}

// VocalFeatures is the complete result of analysing one buffer
type VocalFeatures struct {
	HasVocals            bool                  `json:"has_vocals"`
	VocalConfidence      float64               `json:"vocal_confidence"`
	VocalDensity         float64               `json:"vocal_density"`
	VocalSegments        []VocalSegment        `json:"vocal_segments"`
	Characteristics      VocalCharacteristics  `json:"characteristics"`
	Onsets               []OnsetEvent          `json:"onsets"`
	InstrumentalSegments []InstrumentalSegment `json:"instrumental_segments"`
	Breakdown            StructuralBreakdown   `json:"breakdown"`
	Duration             float64               `json:"duration"`
	SampleRate           int                   `json:"sample_rate"`
}

// SpectralFrame holds the spectral description of one frame. Magnitude and
// Phase are only retained when Config.RetainSpectra is set.
type SpectralFrame struct {
	Magnitude    []float64 `json:"magnitude,omitempty"`
	Phase        []float64 `json:"phase,omitempty"`
	Centroid     float64   `json:"centroid"`
	Rolloff      float64   `json:"rolloff"`
	Flux         float64   `json:"flux"`
	Flatness     float64   `json:"flatness"`
	MagnitudeSum float64   `json:"magnitude_sum"`
}

// TemporalFrame holds the time-domain description of one frame.
// Autocorrelation is only retained when Config.RetainSpectra is set.
type TemporalFrame struct {
	Energy          float64   `json:"energy"`
	ZCR             float64   `json:"zcr"`
	Autocorrelation []float64 `json:"autocorrelation,omitempty"`
	Envelope        float64   `json:"envelope"`
}

// HarmonicFrame is the harmonic description of one frame
type HarmonicFrame struct {
	Ratio         float64 `json:"ratio"`
	Inharmonicity float64 `json:"inharmonicity"`
	Peaks         []int   `json:"peaks"`
	Strength      float64 `json:"strength"`
}

// FrameFeatures gathers every per-frame measurement
type FrameFeatures struct {
	Index       int                    `json:"index"`
	Time        float64                `json:"time"` // frame start, seconds
	Spectral    SpectralFrame          `json:"spectral"`
	Harmonic    HarmonicFrame          `json:"harmonic"`
	Temporal    TemporalFrame          `json:"temporal"`
	Pitch       tonal.PitchEstimate    `json:"pitch"`
	Formants    speech.FormantEstimate `json:"formants"`
	Probability float64                `json:"probability"`
}
