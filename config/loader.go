package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. POWERMODE_SHAKE_ENABLED
const EnvPrefix = "POWERMODE"

// fileConfig is the on-disk shape; durations are whole milliseconds
type fileConfig struct {
	PowerModeEnabled bool `mapstructure:"power_mode_enabled" yaml:"power_mode_enabled"`
	ParticlesEnabled bool `mapstructure:"particles_enabled" yaml:"particles_enabled"`
	ShakeEnabled     bool `mapstructure:"shake_enabled" yaml:"shake_enabled"`
	PartyModeEnabled bool `mapstructure:"party_mode_enabled" yaml:"party_mode_enabled"`
	SoundEnabled     bool `mapstructure:"sound_enabled" yaml:"sound_enabled"`

	ComboActivationThreshold int `mapstructure:"combo_activation_threshold" yaml:"combo_activation_threshold"`
	ComboTimeoutMs           int `mapstructure:"combo_timeout_ms" yaml:"combo_timeout_ms"`

	ParticlesPerPress  int `mapstructure:"particles_per_press" yaml:"particles_per_press"`
	PartyModeThreshold int `mapstructure:"party_mode_threshold" yaml:"party_mode_threshold"`
	ParticleLifetimeMs int `mapstructure:"particle_lifetime_ms" yaml:"particle_lifetime_ms"`

	ExplosionAmount  int `mapstructure:"explosion_amount" yaml:"explosion_amount"`
	ExplosionDelayMs int `mapstructure:"explosion_delay_ms" yaml:"explosion_delay_ms"`
	MaxShakeAmount   int `mapstructure:"max_shake_amount" yaml:"max_shake_amount"`
}

func toFile(c Config) fileConfig {
	return fileConfig{
		PowerModeEnabled:         c.PowerModeEnabled,
		ParticlesEnabled:         c.ParticlesEnabled,
		ShakeEnabled:             c.ShakeEnabled,
		PartyModeEnabled:         c.PartyModeEnabled,
		SoundEnabled:             c.SoundEnabled,
		ComboActivationThreshold: c.ComboActivationThreshold,
		ComboTimeoutMs:           int(c.ComboTimeout / time.Millisecond),
		ParticlesPerPress:        c.ParticlesPerPress,
		PartyModeThreshold:       c.PartyModeThreshold,
		ParticleLifetimeMs:       int(c.ParticleLifetime / time.Millisecond),
		ExplosionAmount:          c.ExplosionAmount,
		ExplosionDelayMs:         int(c.ExplosionDelay / time.Millisecond),
		MaxShakeAmount:           c.MaxShakeAmount,
	}
}

func (f fileConfig) toConfig() Config {
	return Config{
		PowerModeEnabled:         f.PowerModeEnabled,
		ParticlesEnabled:         f.ParticlesEnabled,
		ShakeEnabled:             f.ShakeEnabled,
		PartyModeEnabled:         f.PartyModeEnabled,
		SoundEnabled:             f.SoundEnabled,
		ComboActivationThreshold: f.ComboActivationThreshold,
		ComboTimeout:             time.Duration(f.ComboTimeoutMs) * time.Millisecond,
		ParticlesPerPress:        f.ParticlesPerPress,
		PartyModeThreshold:       f.PartyModeThreshold,
		ParticleLifetime:         time.Duration(f.ParticleLifetimeMs) * time.Millisecond,
		ExplosionAmount:          f.ExplosionAmount,
		ExplosionDelay:           time.Duration(f.ExplosionDelayMs) * time.Millisecond,
		MaxShakeAmount:           f.MaxShakeAmount,
	}
}

// NewViper returns a viper instance seeded with defaults and env overrides
// path may be empty, in which case powermode.yaml is searched in . and $HOME/.config/powermode
func NewViper(path string) *viper.Viper {
	v := viper.New()

	defaults := toFile(Default())
	v.SetDefault("power_mode_enabled", defaults.PowerModeEnabled)
	v.SetDefault("particles_enabled", defaults.ParticlesEnabled)
	v.SetDefault("shake_enabled", defaults.ShakeEnabled)
	v.SetDefault("party_mode_enabled", defaults.PartyModeEnabled)
	v.SetDefault("sound_enabled", defaults.SoundEnabled)
	v.SetDefault("combo_activation_threshold", defaults.ComboActivationThreshold)
	v.SetDefault("combo_timeout_ms", defaults.ComboTimeoutMs)
	v.SetDefault("particles_per_press", defaults.ParticlesPerPress)
	v.SetDefault("party_mode_threshold", defaults.PartyModeThreshold)
	v.SetDefault("particle_lifetime_ms", defaults.ParticleLifetimeMs)
	v.SetDefault("explosion_amount", defaults.ExplosionAmount)
	v.SetDefault("explosion_delay_ms", defaults.ExplosionDelayMs)
	v.SetDefault("max_shake_amount", defaults.MaxShakeAmount)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("powermode")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/powermode")
	}
	return v
}

// Load reads the config file (a missing file is not an error) and decodes it
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var f fileConfig
	if err := v.Unmarshal(&f); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg := f.toConfig()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch applies file edits to store as they happen
// Invalid edits are logged and ignored; the previous config stays live
func Watch(v *viper.Viper, store *Store, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			logger.Warn("config reload rejected", "file", e.Name, "err", err)
			return
		}
		if err := store.Set(cfg); err != nil {
			logger.Warn("config reload rejected", "file", e.Name, "err", err)
			return
		}
		logger.Info("config reloaded", "file", e.Name)
	})
	v.WatchConfig()
}

// Dump writes cfg as YAML in the file format Load accepts
func Dump(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toFile(cfg)); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
