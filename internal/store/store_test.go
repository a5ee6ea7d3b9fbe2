package store

import (
	"errors"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(3))

	roots := []complex128{
		complex(2, 0),
		complex(-2, 0),
		complex(0.5, -1.25),
		complex(math.Pi, -math.E),
		complex(1e-12, 1e12),
	}

	if err := Save(roots, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != len(roots) {
		t.Fatalf("loaded %d roots, want %d", len(loaded), len(roots))
	}
	for i := range roots {
		if cmplx.Abs(loaded[i]-roots[i]) > 1e-6 {
			t.Errorf("root %d: got %v, want %v", i, loaded[i], roots[i])
		}
	}
}

func TestSaveLoad_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(1))

	if err := Save(nil, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty collection, got %d roots", len(loaded))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.dat"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestLoad_BadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mangled.dat")

	// 17 bytes: not a whole number of complex values.
	if err := os.WriteFile(path, make([]byte, 17), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrBadFormat) {
		t.Errorf("expected ErrBadFormat, got %v", err)
	}
}

func TestSave_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	// A file where a directory component is expected.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	err := Save([]complex128{1}, filepath.Join(blocker, "roots.dat"))
	if err == nil {
		t.Fatal("expected error writing under a file path")
	}
}

func TestFileName_Deterministic(t *testing.T) {
	if FileName(12) != "roots_degree_12.dat" {
		t.Errorf("unexpected file name %s", FileName(12))
	}
	if PathFor("/data", 3) != filepath.Join("/data", "roots_degree_3.dat") {
		t.Errorf("unexpected path %s", PathFor("/data", 3))
	}
}
