package mesh_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"boltz/internal/crystal"
	"boltz/internal/mesh"
)

func testStructure() *crystal.Structure {
	return &crystal.Structure{
		Lattice: [3][3]float64{
			{0, 2.734, 2.734},
			{2.734, 0, 2.734},
			{2.734, 2.734, 0},
		},
		Sites: []crystal.Site{
			{Species: "Si", Coords: [3]float64{0, 0, 0}},
			{Species: "Si", Coords: [3]float64{0.25, 0.25, 0.25}},
		},
	}
}

func testData(t *testing.T) mesh.Data {
	t.Helper()
	up, err := mesh.NewArray([]int{2, 3}, []float64{0.1, 0.2, 0.3, 1.1, 1.2, 1.3})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	down, err := mesh.NewArray([]int{2, 3}, []float64{-0.1, -0.2, -0.3, -1.1, -1.2, -1.3})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	kpoints, err := mesh.NewArray([]int{4, 3}, []float64{
		0, 0, 0,
		0.25, 0, 0,
		0.5, 0, 0,
		0.75, 0, 0,
	})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	return mesh.Data{
		"energies": mesh.BySpin{
			mesh.SpinUp:   up,
			mesh.SpinDown: down,
		},
		"kpoints":           kpoints,
		"ibands":            &mesh.IntArray{Dims: []int{3}, Data: []int64{4, 5, 6}},
		"scattering_labels": mesh.Text{"ACD", "IMP", "POP"},
		"structure":         mesh.StructureValue{Structure: testStructure()},
		"vb_idx":            mesh.Absent{},
		"efermi":            mesh.Float(4.75),
		"num_electrons":     mesh.Int(8),
		"is_metal":          mesh.Bool(false),
		"soc":               mesh.Bool(true),
		"functional":        mesh.String("PBE"),
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	want := testData(t)
	if err := mesh.Write(want, path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got, err := mesh.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d logical keys, got %d", len(want), len(got))
	}

	for key, wantValue := range want {
		gotValue, ok := got[key]
		if !ok {
			t.Fatalf("missing key %q", key)
		}
		if key == "structure" {
			gotStructure := gotValue.(mesh.StructureValue).Structure
			if !gotStructure.Equal(testStructure()) {
				t.Fatalf("structure changed across round trip: %+v", gotStructure)
			}
			continue
		}
		if !reflect.DeepEqual(gotValue, wantValue) {
			t.Fatalf("key %q changed across round trip: %#v vs %#v", key, gotValue, wantValue)
		}
	}
}

func TestRoundTripSpinChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	if err := mesh.Write(testData(t), path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got, err := mesh.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	spun, ok := got["energies"].(mesh.BySpin)
	if !ok {
		t.Fatalf("energies is %T, want BySpin", got["energies"])
	}
	if len(spun) != 2 {
		t.Fatalf("expected 2 spin channels, got %d", len(spun))
	}
	if _, ok := spun[mesh.SpinUp]; !ok {
		t.Fatal("missing spin-up channel")
	}
	if _, ok := spun[mesh.SpinDown]; !ok {
		t.Fatal("missing spin-down channel")
	}
}

func TestAbsentValueRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	if err := mesh.Write(mesh.Data{"vb_idx": mesh.Absent{}}, path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got, err := mesh.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if _, ok := got["vb_idx"].(mesh.Absent); !ok {
		t.Fatalf("vb_idx is %T, want Absent", got["vb_idx"])
	}
}

func TestNilValueStoredAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	if err := mesh.Write(mesh.Data{"vb_idx": nil}, path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got, err := mesh.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if _, ok := got["vb_idx"].(mesh.Absent); !ok {
		t.Fatalf("vb_idx is %T, want Absent", got["vb_idx"])
	}
}

func TestVbIdxFalseSentinelReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	if err := mesh.Write(mesh.Data{"vb_idx": mesh.Bool(false), "is_metal": mesh.Bool(false)}, path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got, err := mesh.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if _, ok := got["vb_idx"].(mesh.Absent); !ok {
		t.Fatalf("vb_idx is %T, want Absent (false sentinel)", got["vb_idx"])
	}
	// Only the reserved key gets the sentinel treatment.
	if got["is_metal"] != mesh.Bool(false) {
		t.Fatalf("is_metal is %#v, want Bool(false)", got["is_metal"])
	}
}

func TestTextPreservesSlotWidthContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	labels := mesh.Text{"ACD", "POLAR_OPTICAL", "x", "IONIZED_IMP_Y"}
	if err := mesh.Write(mesh.Data{"scattering_labels": labels}, path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got, err := mesh.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !reflect.DeepEqual(got["scattering_labels"], labels) {
		t.Fatalf("labels changed across round trip: %#v", got["scattering_labels"])
	}
}

func TestWriteRejectsNestedSpinMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	data := mesh.Data{
		"energies": mesh.BySpin{
			mesh.SpinUp: mesh.BySpin{mesh.SpinDown: mesh.Float(1)},
		},
	}
	if err := mesh.Write(data, path); err == nil {
		t.Fatal("expected nested spin mapping to be rejected")
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := mesh.Read(filepath.Join(t.TempDir(), "absent.bmc"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestReadRejectsBadSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	if err := os.WriteFile(path, []byte("definitely not a mesh container"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := mesh.Read(path); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestWriteReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	if err := mesh.Write(testData(t), path); err != nil {
		t.Fatalf("first Write returned error: %v", err)
	}
	// A second write proves the exclusive lock from the first was released.
	if err := mesh.Write(mesh.Data{"efermi": mesh.Float(1)}, path); err != nil {
		t.Fatalf("second Write returned error: %v", err)
	}
	got, err := mesh.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected replacement file with 1 key, got %d", len(got))
	}
}

func TestDescribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.bmc")
	if err := mesh.Write(testData(t), path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	info, err := mesh.Describe(path)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	// energies contributes one entry per spin channel.
	if len(info.Entries) != len(testData(t))+1 {
		t.Fatalf("unexpected entry count: %d", len(info.Entries))
	}

	var spinEntries int
	for _, entry := range info.Entries {
		if entry.Key == "energies" {
			spinEntries++
			if entry.Spin != mesh.SpinUp && entry.Spin != mesh.SpinDown {
				t.Fatalf("energies entry has spin %v", entry.Spin)
			}
			if !reflect.DeepEqual(entry.Dims, []int{2, 3}) {
				t.Fatalf("energies dims %v, want [2 3]", entry.Dims)
			}
			if entry.StoredBytes <= 0 {
				t.Fatal("expected compressed array entry to report stored bytes")
			}
		}
	}
	if spinEntries != 2 {
		t.Fatalf("expected 2 energies entries, got %d", spinEntries)
	}
}
