// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"

	"github.com/spf13/viper"
)

// TransferConfig is settings for how annotation transfer handles the ugly
// cases: partial features at assembly edges and intervals that fall wholly
// inside target-side deletions.
type TransferConfig struct {
	// drop features that are partly out of bounds instead of clipping them
	// to the target boundary with a fuzzy marker
	DropPartial bool `mapstructure:"drop-partial"`

	// what to do with an interval whose both endpoints land in the same
	// target-side deletion: "drop" the interval or keep a single-base
	// "point" at the nearest upstream base
	GapPolicy string `mapstructure:"gap-policy"`

	// treat "<"/">" markers in the reference table as exact positions
	IgnoreAmbigEdge bool `mapstructure:"ignore-ambig-edge"`

	// qualifier keys omitted from the output tables
	ExcludeQualifiers []string `mapstructure:"exclude-qualifiers"`
}

// AlignConfig is settings for the external alignment tool.
type AlignConfig struct {
	// tool name: mafft or muscle
	Tool string `mapstructure:"tool"`

	// path to the tool binary; looked up on PATH when empty
	Path string `mapstructure:"path"`

	// cap on refinement iterations (0 = tool default)
	MaxIters int `mapstructure:"max-iters"`
}

// RunConfig is settings for the multi-chromosome driver.
type RunConfig struct {
	// max chromosomes transferred in parallel (0 = one worker per chromosome)
	Workers int `mapstructure:"workers"`

	// fail on a reference chromosome with no matching target instead of
	// warning and skipping it
	Strict bool `mapstructure:"strict"`
}

// Config is the root-level settings struct and is a mix of settings
// available in a config file and those bound from the command line.
type Config struct {
	Transfer TransferConfig `mapstructure:"transfer"`
	Align    AlignConfig    `mapstructure:"align"`
	Run      RunConfig      `mapstructure:"run"`
}

// SetDefaults registers the default settings with viper. Called once from
// the root command before any flags are bound.
func SetDefaults() {
	viper.SetDefault("transfer.drop-partial", false)
	viper.SetDefault("transfer.gap-policy", "drop")
	viper.SetDefault("transfer.ignore-ambig-edge", false)
	viper.SetDefault("transfer.exclude-qualifiers", []string{"protein_id"})
	viper.SetDefault("align.tool", "mafft")
	viper.SetDefault("align.path", "")
	viper.SetDefault("align.max-iters", 0)
	viper.SetDefault("run.workers", 0)
	viper.SetDefault("run.strict", false)
}

// New returns a new Config struct populated by Viper settings (from a
// config file and/or command line arguments).
func New() *Config {
	var c Config

	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings into struct, %v", err)
	}

	return &c
}
