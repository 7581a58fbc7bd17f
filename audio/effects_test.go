package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/lixenwraith/powermode/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain streams s to exhaustion and returns every sample
func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
	t.Fatal("streamer never drained")
	return nil
}

func TestOscillatorWaves(t *testing.T) {
	rate := beep.SampleRate(44100)
	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		osc := NewOscillator(440, 20*time.Millisecond, wave, rate)
		samples := drain(t, osc)

		assert.Len(t, samples, rate.N(20*time.Millisecond), "wave %d", wave)
		for i, s := range samples {
			require.InDelta(t, 0, s[0], 1.0, "wave %d sample %d", wave, i)
			require.Equal(t, s[0], s[1], "mono signal on both channels")
		}
		assert.NoError(t, osc.Err())
	}
}

func TestEnvelopeShapesEdges(t *testing.T) {
	rate := beep.SampleRate(1000)
	square := NewOscillator(100, 100*time.Millisecond, WaveSquare, rate)
	env := NewEnvelope(square, 100*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond, rate)

	samples := drain(t, env)
	require.Len(t, samples, 100)

	assert.Zero(t, samples[0][0], "attack starts silent")
	assert.InDelta(t, 1.0, abs(samples[50][0]), 1e-9, "sustain at full level")
	assert.Less(t, abs(samples[99][0]), 0.1, "release fades out")
}

func TestEffectSoundsAreFinite(t *testing.T) {
	cfg := DefaultAudioConfig()

	pop := drain(t, CreatePopSound(cfg, 10))
	assert.Len(t, pop, beep.SampleRate(cfg.SampleRate).N(popDuration))

	party := drain(t, CreatePartySound(cfg, 200))
	assert.Len(t, party, beep.SampleRate(cfg.SampleRate).N(partyDuration))

	for _, s := range append(pop, party...) {
		require.LessOrEqual(t, abs(s[0]), 1.0)
	}
}

func TestIntensityScale(t *testing.T) {
	assert.Zero(t, intensityScale(0))
	assert.InDelta(t, 0.3+0.7*10.0/fullIntensity, intensityScale(10), 1e-9)
	assert.Equal(t, 1.0, intensityScale(fullIntensity))
	assert.Equal(t, 1.0, intensityScale(500))
}

// TestSoundManagerGracefulDegradation verifies playback is a no-op without a device
func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager(nil)
	assert.NotPanics(t, func() {
		sm.Play(core.SoundPop, 10)
		sm.Play(core.SoundParty, 200)
		sm.Cleanup()
	})
}

func TestSoundManagerRoutesKinds(t *testing.T) {
	sm := NewSoundManager(nil)
	var queued []beep.Streamer
	sm.output = func(s beep.Streamer) { queued = append(queued, s) }

	sm.Play(core.SoundPop, 10)
	sm.Play(core.SoundParty, 200)
	sm.Play(core.SoundTypeCount, 1)

	require.Len(t, queued, 2)
	pop := drain(t, queued[0])
	party := drain(t, queued[1])
	assert.Less(t, len(pop), len(party))
}

func TestLoadAudioConfigFromEnv(t *testing.T) {
	t.Setenv("POWERMODE_MASTER_VOLUME", "150")
	t.Setenv("POWERMODE_SAMPLE_RATE", "22050")

	cfg := LoadAudioConfig()
	assert.Equal(t, 1.0, cfg.MasterVolume)
	assert.Equal(t, 22050, cfg.SampleRate)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
