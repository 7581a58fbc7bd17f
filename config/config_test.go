package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.ParticlesPerPress)
	assert.Equal(t, 10*time.Second, cfg.ComboTimeout)
	assert.Equal(t, 5, cfg.MaxShakeAmount)
}

func TestValidateRejectsNegatives(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold", func(c *Config) { c.ComboActivationThreshold = -1 }},
		{"timeout", func(c *Config) { c.ComboTimeout = -time.Millisecond }},
		{"per press", func(c *Config) { c.ParticlesPerPress = -2 }},
		{"party threshold", func(c *Config) { c.PartyModeThreshold = -1 }},
		{"lifetime", func(c *Config) { c.ParticleLifetime = 0 }},
		{"amount", func(c *Config) { c.ExplosionAmount = -3 }},
		{"delay", func(c *Config) { c.ExplosionDelay = -time.Second }},
		{"max shake", func(c *Config) { c.MaxShakeAmount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestStoreUpdateAndListeners(t *testing.T) {
	store := MustNewStore(Default())

	var got []Config
	store.OnChange(func(c Config) { got = append(got, c) })

	require.NoError(t, store.Update(func(c *Config) { c.ShakeEnabled = false }))
	assert.False(t, store.Load().ShakeEnabled)
	require.Len(t, got, 1)
	assert.False(t, got[0].ShakeEnabled)

	// Rejected update keeps the previous config and notifies nobody
	err := store.Update(func(c *Config) { c.MaxShakeAmount = -1 })
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 5, store.Load().MaxShakeAmount)
	assert.Len(t, got, 1)
}

// TestListenerMayRegisterListener checks listeners run on a snapshot taken before they fire
func TestListenerMayRegisterListener(t *testing.T) {
	store := MustNewStore(Default())

	var outer, inner int
	store.OnChange(func(Config) {
		outer++
		store.OnChange(func(Config) { inner++ })
	})

	require.NoError(t, store.Update(func(c *Config) { c.SoundEnabled = true }))
	assert.Equal(t, 1, outer)
	assert.Zero(t, inner, "listener added mid-notification waits for the next update")

	require.NoError(t, store.Update(func(c *Config) { c.SoundEnabled = false }))
	assert.Equal(t, 2, outer)
	assert.Equal(t, 1, inner)
}

func TestStoreLoadReturnsCopy(t *testing.T) {
	store := MustNewStore(Default())
	snap := store.Load()
	snap.ParticlesPerPress = 99
	assert.Equal(t, 10, store.Load().ParticlesPerPress)
}

func TestStoreConcurrentUpdates(t *testing.T) {
	store := MustNewStore(Default())
	start := store.Load().PartyModeThreshold

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(func(c *Config) { c.PartyModeThreshold++ })
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Load()
		}()
	}
	wg.Wait()

	// No lost updates
	assert.Equal(t, start+50, store.Load().PartyModeThreshold)
}

func TestNewStoreRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.ParticlesPerPress = -1
	_, err := NewStore(cfg)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Panics(t, func() { MustNewStore(cfg) })
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powermode.yaml")
	content := []byte(`
shake_enabled: false
combo_activation_threshold: 3
combo_timeout_ms: 2500
particles_per_press: 6
explosion_delay_ms: 20
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)

	assert.False(t, cfg.ShakeEnabled)
	assert.Equal(t, 3, cfg.ComboActivationThreshold)
	assert.Equal(t, 2500*time.Millisecond, cfg.ComboTimeout)
	assert.Equal(t, 6, cfg.ParticlesPerPress)
	assert.Equal(t, 20*time.Millisecond, cfg.ExplosionDelay)

	// Unset keys fall back to defaults
	assert.True(t, cfg.ParticlesEnabled)
	assert.Equal(t, Default().MaxShakeAmount, cfg.MaxShakeAmount)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powermode.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_shake_amount: -4\n"), 0o644))

	_, err := Load(NewViper(path))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("POWERMODE_PARTY_MODE_ENABLED", "false")
	t.Setenv("POWERMODE_MAX_SHAKE_AMOUNT", "9")

	path := filepath.Join(t.TempDir(), "powermode.yaml")
	require.NoError(t, os.WriteFile(path, []byte("particles_per_press: 4\n"), 0o644))

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)
	assert.False(t, cfg.PartyModeEnabled)
	assert.Equal(t, 9, cfg.MaxShakeAmount)
	assert.Equal(t, 4, cfg.ParticlesPerPress)
}

func TestDumpLoadsBack(t *testing.T) {
	cfg := Default()
	cfg.ComboActivationThreshold = 4
	cfg.ExplosionAmount = 3
	cfg.SoundEnabled = true

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, cfg))
	assert.Contains(t, buf.String(), "combo_activation_threshold: 4")

	path := filepath.Join(t.TempDir(), "dumped.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := Load(NewViper(path))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
