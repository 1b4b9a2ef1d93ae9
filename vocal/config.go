package vocal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
)

// ErrInvalidConfig is wrapped by every configuration validation error
var ErrInvalidConfig = errors.New("invalid vocal analyzer config")

// Config holds every tunable of the vocal analyzer
type Config struct {
	// Framing
	FrameSize int `json:"frame_size" yaml:"frame_size"` // power of two
	HopSize   int `json:"hop_size" yaml:"hop_size"`

	// Spectral and harmonic analysis
	RolloffFraction float64 `json:"rolloff_fraction" yaml:"rolloff_fraction"`
	PeakThreshold   float64 `json:"peak_threshold" yaml:"peak_threshold"` // fraction of the frame maximum

	// Pitch
	MinPitchHz       float64 `json:"min_pitch_hz" yaml:"min_pitch_hz"`
	MaxPitchHz       float64 `json:"max_pitch_hz" yaml:"max_pitch_hz"`
	VoicingThreshold float64 `json:"voicing_threshold" yaml:"voicing_threshold"`

	// Formants
	LPCOrder    int     `json:"lpc_order" yaml:"lpc_order"`
	PreEmphasis float64 `json:"pre_emphasis" yaml:"pre_emphasis"`

	// Segmentation
	ProbabilityThreshold   float64 `json:"probability_threshold" yaml:"probability_threshold"`
	MinSegmentSeconds      float64 `json:"min_segment_seconds" yaml:"min_segment_seconds"`
	OnsetThreshold         float64 `json:"onset_threshold" yaml:"onset_threshold"`
	MinInstrumentalGap     float64 `json:"min_instrumental_gap" yaml:"min_instrumental_gap"`
	InstrumentalConfidence float64 `json:"instrumental_confidence" yaml:"instrumental_confidence"`

	// Execution
	Workers       int  `json:"workers" yaml:"workers"`               // batch workers, 0 = NumCPU
	RetainSpectra bool `json:"retain_spectra" yaml:"retain_spectra"` // keep per-frame vectors in AnalyzeFrames
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		FrameSize:              2048,
		HopSize:                512,
		RolloffFraction:        0.85,
		PeakThreshold:          0.05,
		MinPitchHz:             80,
		MaxPitchHz:             800,
		VoicingThreshold:       0.4,
		LPCOrder:               14,
		PreEmphasis:            0.97,
		ProbabilityThreshold:   0.5,
		MinSegmentSeconds:      0.5,
		OnsetThreshold:         0.02,
		MinInstrumentalGap:     2.0,
		InstrumentalConfidence: 0.7,
	}
}

// Validate checks every field and returns an error wrapping ErrInvalidConfig
func (c *Config) Validate() error {
	switch {
	case c.FrameSize < 64 || !common.IsPowerOfTwo(c.FrameSize):
		return fmt.Errorf("%w: frame size %d must be a power of two >= 64", ErrInvalidConfig, c.FrameSize)
	case c.HopSize <= 0 || c.HopSize > c.FrameSize/2:
		// Frames overlap by at least half a window
		return fmt.Errorf("%w: hop size %d must be in [1, %d]", ErrInvalidConfig, c.HopSize, c.FrameSize/2)
	case c.RolloffFraction <= 0 || c.RolloffFraction > 1:
		return fmt.Errorf("%w: rolloff fraction %.3f must be in (0, 1]", ErrInvalidConfig, c.RolloffFraction)
	case c.PeakThreshold < 0 || c.PeakThreshold >= 1:
		return fmt.Errorf("%w: peak threshold %.3f must be in [0, 1)", ErrInvalidConfig, c.PeakThreshold)
	case c.MinPitchHz <= 0 || c.MaxPitchHz <= c.MinPitchHz:
		return fmt.Errorf("%w: pitch range [%.1f, %.1f] Hz", ErrInvalidConfig, c.MinPitchHz, c.MaxPitchHz)
	case c.VoicingThreshold < 0 || c.VoicingThreshold > 1:
		return fmt.Errorf("%w: voicing threshold %.3f must be in [0, 1]", ErrInvalidConfig, c.VoicingThreshold)
	case c.LPCOrder <= 0 || c.LPCOrder >= c.FrameSize:
		return fmt.Errorf("%w: LPC order %d must be in [1, %d)", ErrInvalidConfig, c.LPCOrder, c.FrameSize)
	case c.PreEmphasis < 0 || c.PreEmphasis >= 1:
		return fmt.Errorf("%w: pre-emphasis %.3f must be in [0, 1)", ErrInvalidConfig, c.PreEmphasis)
	case c.ProbabilityThreshold < 0 || c.ProbabilityThreshold > 1:
		return fmt.Errorf("%w: probability threshold %.3f must be in [0, 1]", ErrInvalidConfig, c.ProbabilityThreshold)
	case c.MinSegmentSeconds < 0:
		return fmt.Errorf("%w: min segment length %.3f s is negative", ErrInvalidConfig, c.MinSegmentSeconds)
	case c.OnsetThreshold < 0:
		return fmt.Errorf("%w: onset threshold %.3f is negative", ErrInvalidConfig, c.OnsetThreshold)
	case c.MinInstrumentalGap < 0:
		return fmt.Errorf("%w: min instrumental gap %.3f s is negative", ErrInvalidConfig, c.MinInstrumentalGap)
	case c.InstrumentalConfidence < 0 || c.InstrumentalConfidence > 1:
		return fmt.Errorf("%w: instrumental confidence %.3f must be in [0, 1]", ErrInvalidConfig, c.InstrumentalConfidence)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// LoadConfig reads a YAML document over the defaults and validates the result.
// Fields missing from the document keep their default values.
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigFile loads a YAML config from disk
func LoadConfigFile(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open YAML config file: %w", err)
	}
	defer file.Close()

	return LoadConfig(file)
}
