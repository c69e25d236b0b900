package tmr

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Conflict != ConflictVoter {
		t.Errorf("expected conflict policy voter, got %s", cfg.Conflict)
	}
	if cfg.InstancePorts != InstancePortsClassify {
		t.Errorf("expected instance port policy classify, got %s", cfg.InstancePorts)
	}
	if cfg.WidthFromWire || cfg.Library || cfg.Verbose {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty policies", func(c *Config) { c.Conflict = ""; c.InstancePorts = "" }, false},
		{"upper case", func(c *Config) { c.InstancePorts = "PASSTHROUGH" }, false},
		{"unknown conflict", func(c *Config) { c.Conflict = "majority" }, true},
		{"unknown instance ports", func(c *Config) { c.InstancePorts = "ignore" }, true},
		{"library with wide primitives", func(c *Config) { c.Library = true; c.WidthFromWire = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Logger == nil {
				t.Errorf("expected a logger after Validate")
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Conflict = "both"
	if _, err := New(cfg); err == nil {
		t.Errorf("expected error for invalid conflict policy")
	}
}

func TestVerboseLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Verbose = true
	cfg.Logger = log.New(&buf, "", 0)

	runPass(t, parseDesign(t, scenarioC), cfg)

	out := buf.String()
	for _, want := range []string{
		"#### Running TMRG pass ####",
		`tmr: \top: pass-through port \Z`,
		`tmr: \top: voter \Y_voter -> \Y`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestQuietLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = log.New(&buf, "", 0)

	runPass(t, parseDesign(t, scenarioC), cfg)

	if strings.Contains(buf.String(), "pass-through") {
		t.Errorf("per-wire decisions logged without verbose:\n%s", buf.String())
	}
}
