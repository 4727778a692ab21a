package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Limits are the operational knobs an operator may tune without a restart:
// invitation lifetime and media upload caps.
type Limits struct {
	InviteTTL          time.Duration `mapstructure:"inviteTtl"`
	MaxUploadBytes     int64         `mapstructure:"maxUploadBytes"`
	AllowedMediaTypes  []string      `mapstructure:"allowedMediaTypes"`
	MaxPlusOnes        int           `mapstructure:"maxPlusOnes"`
	MaxPendingPerGuest int           `mapstructure:"maxPendingPerGuest"`
}

func DefaultLimits() Limits {
	return Limits{
		InviteTTL:      14 * 24 * time.Hour,
		MaxUploadBytes: 100 << 20,
		AllowedMediaTypes: []string{
			"image/jpeg", "image/png", "image/heic", "image/webp",
			"video/mp4", "video/quicktime",
		},
		MaxPlusOnes:        5,
		MaxPendingPerGuest: 50,
	}
}

// LimitsHolder exposes the current Limits and hot-reloads them when the
// config file changes on disk.
type LimitsHolder struct {
	current atomic.Value // holds Limits
}

func NewLimitsHolder() (*LimitsHolder, error) {
	v := viper.New()

	v.SetConfigName("limits")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/evermore")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EVERMORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLimits()
	v.SetDefault("limits.inviteTtl", defaults.InviteTTL)
	v.SetDefault("limits.maxUploadBytes", defaults.MaxUploadBytes)
	v.SetDefault("limits.allowedMediaTypes", defaults.AllowedMediaTypes)
	v.SetDefault("limits.maxPlusOnes", defaults.MaxPlusOnes)
	v.SetDefault("limits.maxPendingPerGuest", defaults.MaxPendingPerGuest)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var limits Limits
	if err := v.UnmarshalKey("limits", &limits); err != nil {
		return nil, err
	}
	if err := validateLimits(limits); err != nil {
		return nil, err
	}

	holder := &LimitsHolder{}
	holder.current.Store(limits)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Limits
		if err := v.UnmarshalKey("limits", &updated); err != nil {
			log.Printf("[limits-config] reload failed: %v", err)
			return
		}
		if err := validateLimits(updated); err != nil {
			log.Printf("[limits-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[limits-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticLimits wraps fixed limits without file watching. Tests use this to
// pin the knobs they exercise.
func StaticLimits(limits Limits) *LimitsHolder {
	holder := &LimitsHolder{}
	holder.current.Store(limits)
	return holder
}

func (h *LimitsHolder) Get() Limits {
	return h.current.Load().(Limits)
}

func validateLimits(limits Limits) error {
	if limits.InviteTTL <= 0 {
		return errors.New("limits.inviteTtl must be positive")
	}
	if limits.MaxUploadBytes <= 0 {
		return errors.New("limits.maxUploadBytes must be positive")
	}
	if len(limits.AllowedMediaTypes) == 0 {
		return errors.New("limits.allowedMediaTypes cannot be empty")
	}
	if limits.MaxPendingPerGuest <= 0 {
		return errors.New("limits.maxPendingPerGuest must be positive")
	}
	return nil
}
