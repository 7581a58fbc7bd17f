package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/lixenwraith/powermode/core"
	"github.com/lixenwraith/powermode/vmath"
)

const (
	popDuration    = 60 * time.Millisecond
	popAttack      = 2 * time.Millisecond
	popRelease     = 50 * time.Millisecond
	partyDuration  = 220 * time.Millisecond
	partyAttack    = 5 * time.Millisecond
	partyRelease   = 150 * time.Millisecond
	fullIntensity  = 50 // particle count at which a pop reaches full volume
	popBaseFreq    = 520.0
	partyStartFreq = 880.0
	partyEndFreq   = 220.0
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates raw audio waves with an optional linear frequency sweep
type oscillator struct {
	freq     float64
	endFreq  float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *vmath.FastRand
}

// NewOscillator creates a fixed-frequency oscillator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewSweep(freq, freq, duration, wave, rate)
}

// NewSweep creates an oscillator gliding linearly from freq to endFreq
func NewSweep(freq, endFreq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		endFreq:  endFreq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      vmath.NewFastRand(uint64(freq*1000) + 1),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = float64(o.rng.Intn(2001)-1000) / 1000.0
		}

		samples[i][0] = val
		samples[i][1] = val

		progress := float64(o.position) / float64(o.duration)
		freq := o.freq + (o.endFreq-o.freq)*progress
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope creates an attack/release envelope
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := max(total-att-rel, 0)

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			remaining := e.totalSamples - e.position
			vol = max(float64(remaining)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// math.Log2(0) is -Inf, so 0 volume maps to silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// intensityScale maps a particle count onto (0, 1]
func intensityScale(intensity int) float64 {
	if intensity <= 0 {
		return 0
	}
	return min(0.3+0.7*float64(intensity)/fullIntensity, 1)
}

// CreatePopSound generates a short click for a caret explosion
func CreatePopSound(cfg *AudioConfig, intensity int) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	tone := NewOscillator(popBaseFreq, popDuration, WaveSine, rate)
	noise := NewOscillator(0, popDuration, WaveNoise, rate)
	mixed := beep.Mix(
		newVolume(NewEnvelope(tone, popDuration, popAttack, popRelease, rate), 0.6),
		newVolume(NewEnvelope(noise, popDuration, popAttack, popRelease/2, rate), 0.4),
	)

	vol := cfg.EffectVolumes[core.SoundPop] * cfg.MasterVolume * intensityScale(intensity)
	return newVolume(beep.Take(rate.N(popDuration), mixed), vol)
}

// CreatePartySound generates a falling saw chirp for party-mode bursts
func CreatePartySound(cfg *AudioConfig, intensity int) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	chirp := NewSweep(partyStartFreq, partyEndFreq, partyDuration, WaveSaw, rate)
	shaped := NewEnvelope(chirp, partyDuration, partyAttack, partyRelease, rate)

	vol := cfg.EffectVolumes[core.SoundParty] * cfg.MasterVolume * intensityScale(intensity)
	return newVolume(beep.Take(rate.N(partyDuration), shaped), vol)
}
