package config

import (
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

func TestConfig_defaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	c := New()

	if c.Transfer.DropPartial {
		t.Error("New() drop-partial default = true, want false (clip at boundaries)")
	}
	if c.Transfer.GapPolicy != "drop" {
		t.Errorf("New() gap-policy default = %q, want %q", c.Transfer.GapPolicy, "drop")
	}
	if want := []string{"protein_id"}; !reflect.DeepEqual(c.Transfer.ExcludeQualifiers, want) {
		t.Errorf("New() exclude-qualifiers default = %v, want %v", c.Transfer.ExcludeQualifiers, want)
	}
	if c.Align.Tool != "mafft" {
		t.Errorf("New() align tool default = %q, want mafft", c.Align.Tool)
	}
	if c.Run.Workers != 0 {
		t.Errorf("New() workers default = %d, want 0 (one per chromosome)", c.Run.Workers)
	}
}

func TestConfig_override(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("transfer.gap-policy", "point")
	viper.Set("run.strict", true)

	c := New()

	if c.Transfer.GapPolicy != "point" {
		t.Errorf("New() gap-policy = %q, want %q", c.Transfer.GapPolicy, "point")
	}
	if !c.Run.Strict {
		t.Error("New() strict = false, want true")
	}
}
