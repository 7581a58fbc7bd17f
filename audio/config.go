package audio

import (
	"os"
	"strconv"

	"github.com/lixenwraith/powermode/core"
)

// AudioConfig holds synthesis and output settings
type AudioConfig struct {
	SampleRate    int
	MasterVolume  float64
	EffectVolumes [core.SoundTypeCount]float64
}

// DefaultAudioConfig returns the stock audio settings
func DefaultAudioConfig() *AudioConfig {
	cfg := &AudioConfig{
		SampleRate:   44100,
		MasterVolume: 0.5,
	}
	cfg.EffectVolumes[core.SoundPop] = 0.6
	cfg.EffectVolumes[core.SoundParty] = 0.8
	return cfg
}

// LoadAudioConfig loads audio configuration from environment variables
func LoadAudioConfig() *AudioConfig {
	cfg := DefaultAudioConfig()

	// Master volume as 0-100
	if volume := os.Getenv("POWERMODE_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = min(max(float64(val)/100.0, 0), 1)
		}
	}

	if sampleRate := os.Getenv("POWERMODE_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	return cfg
}
