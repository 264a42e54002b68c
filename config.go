package pointcloud

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultParticles = 50000

type Config struct {
	Particles   int    `yaml:"particles"`
	Seed        int64  `yaml:"seed"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Title       string `yaml:"title"`
	Debug       bool   `yaml:"debug"`
	Policy      string `yaml:"policy"`
	Format      string `yaml:"format"`
	MetricsAddr string `yaml:"metrics_addr"`
	MaxFPS      int    `yaml:"max_fps"`
}

func DefaultConfig() Config {
	return Config{
		Particles: DefaultParticles,
		Width:     1280,
		Height:    720,
		Title:     "PointRT Go",
		Policy:    PolicyRecompute.String(),
		Format:    "bgra8unorm",
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalidConfig, c.Particles)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.MaxFPS < 0 {
		return fmt.Errorf("%w: max_fps must not be negative", ErrInvalidConfig)
	}
	if c.Format == "" {
		return fmt.Errorf("%w: empty surface format", ErrInvalidConfig)
	}
	if _, err := ParseUpdatePolicy(c.Policy); err != nil {
		return err
	}
	return nil
}

// UpdatePolicy returns the parsed policy. Call Validate first.
func (c Config) UpdatePolicy() UpdatePolicy {
	p, _ := ParseUpdatePolicy(c.Policy)
	return p
}

// ReadConfig decodes YAML over the defaults.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return ReadConfig(f)
}

func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Particles, "particles", c.Particles, "Number of simulated particles")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Random seed for the initial distribution (0 = time based)")
	fs.IntVar(&c.Width, "width", c.Width, "Window width")
	fs.IntVar(&c.Height, "height", c.Height, "Window height")
	fs.StringVar(&c.Title, "title", c.Title, "Window title")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging and frame profiling")
	fs.StringVar(&c.Policy, "policy", c.Policy, "Particle update policy: recompute or integrate")
	fs.StringVar(&c.Format, "format", c.Format, "Preferred surface format")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Serve Prometheus metrics on this address")
	fs.IntVar(&c.MaxFPS, "max-fps", c.MaxFPS, "Cap the frame rate (0 = display rate)")
}

// ParseConfig builds a config from defaults, then an optional -config YAML file, then the
// flags given explicitly on the command line.
func ParseConfig(name string, args []string) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "YAML config file")
	flagged := DefaultConfig()
	flagged.bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if *path != "" {
		var err error
		if cfg, err = LoadConfigFile(*path); err != nil {
			return Config{}, err
		}
	}

	overrides := flag.NewFlagSet(name, flag.ContinueOnError)
	cfg.bindFlags(overrides)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || setErr != nil {
			return
		}
		setErr = overrides.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return Config{}, setErr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
