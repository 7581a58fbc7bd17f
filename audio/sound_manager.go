package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/lixenwraith/powermode/core"
)

// maxVoices caps concurrently mixed effects so a key-repeat storm stays bounded
const maxVoices = 8

// SoundManager plays power mode effects through the system speaker
type SoundManager struct {
	mu          sync.Mutex
	cfg         *AudioConfig
	mixer       *beep.Mixer
	initialized bool

	// output replaces speaker playback in tests
	output func(beep.Streamer)
}

// NewSoundManager creates a new sound manager; nil cfg uses defaults
func NewSoundManager(cfg *AudioConfig) *SoundManager {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	return &SoundManager{
		cfg:   cfg,
		mixer: &beep.Mixer{},
	}
}

// Initialize sets up the audio device
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	rate := beep.SampleRate(sm.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.output = func(s beep.Streamer) {
		speaker.Lock()
		defer speaker.Unlock()
		if sm.mixer.Len() >= maxVoices {
			return
		}
		sm.mixer.Add(s)
	}
	sm.initialized = true
	return nil
}

// Play synthesises and queues the effect for kind; a no-op until initialised
func (sm *SoundManager) Play(kind core.SoundType, intensity int) {
	sm.mu.Lock()
	out := sm.output
	cfg := sm.cfg
	sm.mu.Unlock()

	if out == nil {
		return
	}

	switch kind {
	case core.SoundPop:
		out(CreatePopSound(cfg, intensity))
	case core.SoundParty:
		out(CreatePartySound(cfg, intensity))
	}
}

// Cleanup silences queued effects and detaches output
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()

	sm.output = nil
	sm.initialized = false
}
