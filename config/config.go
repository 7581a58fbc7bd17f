// Package config holds the runtime-tunable power mode settings.
//
// A single Store owns the current Config; every component reads a snapshot
// through it on each edit so updates take effect on the next keystroke.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid marks a configuration rejected by Validate
var ErrInvalid = errors.New("invalid config")

// Config is the full set of recognised options
type Config struct {
	PowerModeEnabled bool
	ParticlesEnabled bool
	ShakeEnabled     bool
	PartyModeEnabled bool
	SoundEnabled     bool

	// ComboActivationThreshold of 0 disables combo gating
	ComboActivationThreshold int
	ComboTimeout             time.Duration

	ParticlesPerPress  int
	PartyModeThreshold int
	ParticleLifetime   time.Duration

	// ExplosionAmount is the per-step shake displacement in cells
	ExplosionAmount int
	ExplosionDelay  time.Duration
	MaxShakeAmount  int
}

// Default returns the stock settings
func Default() Config {
	return Config{
		PowerModeEnabled: true,
		ParticlesEnabled: true,
		ShakeEnabled:     true,
		PartyModeEnabled: true,
		SoundEnabled:     false,

		ComboActivationThreshold: 0,
		ComboTimeout:             10 * time.Second,

		ParticlesPerPress:  10,
		PartyModeThreshold: 20,
		ParticleLifetime:   600 * time.Millisecond,

		ExplosionAmount: 2,
		ExplosionDelay:  50 * time.Millisecond,
		MaxShakeAmount:  5,
	}
}

// Validate rejects values the trigger cannot act on
func (c Config) Validate() error {
	var errs []error
	if c.ComboActivationThreshold < 0 {
		errs = append(errs, fmt.Errorf("combo_activation_threshold %d < 0", c.ComboActivationThreshold))
	}
	if c.ComboTimeout < 0 {
		errs = append(errs, fmt.Errorf("combo_timeout %v < 0", c.ComboTimeout))
	}
	if c.ParticlesPerPress < 0 {
		errs = append(errs, fmt.Errorf("particles_per_press %d < 0", c.ParticlesPerPress))
	}
	if c.PartyModeThreshold < 0 {
		errs = append(errs, fmt.Errorf("party_mode_threshold %d < 0", c.PartyModeThreshold))
	}
	if c.ParticleLifetime <= 0 {
		errs = append(errs, fmt.Errorf("particle_lifetime %v must be positive", c.ParticleLifetime))
	}
	if c.ExplosionAmount < 0 {
		errs = append(errs, fmt.Errorf("explosion_amount %d < 0", c.ExplosionAmount))
	}
	if c.ExplosionDelay < 0 {
		errs = append(errs, fmt.Errorf("explosion_delay %v < 0", c.ExplosionDelay))
	}
	if c.MaxShakeAmount < 0 {
		errs = append(errs, fmt.Errorf("max_shake_amount %d < 0", c.MaxShakeAmount))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
