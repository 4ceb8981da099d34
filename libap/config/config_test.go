package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Port != 9999 {
		t.Fatalf("got port %d, want 9999", d.Port)
	}
	if d.CacheSize != 1024 {
		t.Fatalf("got cache size %d, want 1024", d.CacheSize)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("AP_PORT", "1234")
	t.Setenv("AP_HOST", "node-1")

	c := Load()
	if c.Port != 1234 {
		t.Fatalf("got port %d, want 1234", c.Port)
	}
	if c.Host != "node-1" {
		t.Fatalf("got host %q, want node-1", c.Host)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	for _, key := range []string{"AP_PORT", "AP_HOST", "AP_CNFG", "AP_CACHE_SIZE"} {
		os.Unsetenv(key)
	}
	c := Load()
	d := Defaults()
	if c.Port != d.Port {
		t.Fatalf("got port %d, want default %d", c.Port, d.Port)
	}
}
