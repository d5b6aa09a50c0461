package render

import (
	"fmt"
	"strings"

	"pagebind/internal/config"
	"pagebind/internal/imaging"
)

// Order selects how pages are sequenced before grouping.
type Order int

const (
	// OrderNatural sorts with digit runs compared as integers.
	OrderNatural Order = iota
	// OrderAlphabetical sorts by lowercased file name only.
	OrderAlphabetical
	// OrderReversed reverses the natural order.
	OrderReversed
)

// ParseOrder maps a configuration value to an Order.
func ParseOrder(value string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "natural":
		return OrderNatural, nil
	case "alphabetical":
		return OrderAlphabetical, nil
	case "reversed":
		return OrderReversed, nil
	default:
		return OrderNatural, fmt.Errorf("unknown merge order %q", value)
	}
}

// Speed selects the group sizing mode.
type Speed int

const (
	SpeedNormal Speed = iota
	SpeedFast
	SpeedVeryFast
)

// ParseSpeed maps a configuration value to a Speed.
func ParseSpeed(value string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "normal":
		return SpeedNormal, nil
	case "fast":
		return SpeedFast, nil
	case "veryfast":
		return SpeedVeryFast, nil
	default:
		return SpeedNormal, fmt.Errorf("unknown speed mode %q", value)
	}
}

// Options describes one conversion run's rendering behavior.
type Options struct {
	Grayscale       bool
	Resize          imaging.Preset
	MergeOrder      Order
	Speed           Speed
	Workers         int
	MinSuccessRatio float64
}

// OptionsFromConfig builds render options from validated configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	order, err := ParseOrder(cfg.Conversion.MergeOrder)
	if err != nil {
		return Options{}, err
	}
	speed, err := ParseSpeed(cfg.Conversion.Speed)
	if err != nil {
		return Options{}, err
	}
	preset, err := imaging.ParsePreset(cfg.Conversion.Resize)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Grayscale:       cfg.Conversion.Grayscale,
		Resize:          preset,
		MergeOrder:      order,
		Speed:           speed,
		Workers:         cfg.Conversion.Workers,
		MinSuccessRatio: cfg.Conversion.MinSuccessRatio,
	}, nil
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 1
	}
	return o.Workers
}

func (o Options) successRatio() float64 {
	if o.MinSuccessRatio <= 0 || o.MinSuccessRatio > 1 {
		return 1.0 / 3.0
	}
	return o.MinSuccessRatio
}
