package settings_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"boltz/internal/settings"
)

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	doc := "doping: \"1e18:1e20:5\"\ntemperatures: 300\nstatic_dielectric: 12\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write settings document: %v", err)
	}

	validated, err := settings.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	doping, ok := validated["doping"].([]float64)
	if !ok || len(doping) != 5 {
		t.Fatalf("unexpected doping: %v", validated["doping"])
	}
	temps := validated["temperatures"].([]float64)
	if !reflect.DeepEqual(temps, []float64{300}) {
		t.Fatalf("unexpected temperatures: %v", temps)
	}
	static := validated["static_dielectric"].(settings.Tensor)
	if static[0][0] != 12 || static[0][1] != 0 {
		t.Fatalf("unexpected static dielectric: %v", static)
	}
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	doc := "temperatures = \"100:300:3\"\ninterpolation_factor = 5\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write settings document: %v", err)
	}

	validated, err := settings.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	temps := validated["temperatures"].([]float64)
	if !reflect.DeepEqual(temps, []float64{100, 200, 300}) {
		t.Fatalf("unexpected temperatures: %v", temps)
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	if err := os.WriteFile(path, []byte("x=1\n"), 0o644); err != nil {
		t.Fatalf("write settings document: %v", err)
	}
	if _, err := settings.LoadFile(path); err == nil {
		t.Fatal("expected unsupported-format error")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := settings.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected missing-file error")
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	validated, err := settings.Validate(settings.Settings{
		"doping":            "1e16,1e17",
		"static_dielectric": 10,
		"elastic_constant":  100,
	})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if err := settings.WriteFile(validated, path); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	reloaded, err := settings.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if !reflect.DeepEqual(reloaded["doping"], validated["doping"]) {
		t.Fatalf("doping changed across round trip: %v vs %v", reloaded["doping"], validated["doping"])
	}
	if !reflect.DeepEqual(reloaded["static_dielectric"], validated["static_dielectric"]) {
		t.Fatalf("static dielectric changed across round trip: %v", reloaded["static_dielectric"])
	}
	if !reflect.DeepEqual(reloaded["elastic_constant"], validated["elastic_constant"]) {
		t.Fatalf("elastic constant changed across round trip")
	}
}
