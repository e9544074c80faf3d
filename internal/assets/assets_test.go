package assets

import (
	"os"
	"path/filepath"
	"testing"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

// tinyTGA is a 1x1 uncompressed 24-bit true-color image.
var tinyTGA = []byte{
	0, 0, 2, // no id, no color map, true color
	0, 0, 0, 0, 0, // color map spec
	0, 0, 0, 0, // origin
	1, 0, 1, 0, // 1x1
	24, 0, // depth, descriptor
	0x40, 0x80, 0xC0, // single BGR pixel
}

func writeAsset(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestManager_SearchPathPriority(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writeAsset(t, low, "note.txt", []byte("low"))
	writeAsset(t, high, "note.txt", []byte("high"))

	m := NewManager()
	defer m.Close()
	if err := m.AddSearchPath(low); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSearchPath(high); err != nil {
		t.Fatal(err)
	}

	data, err := m.Load("note.txt")
	if err != nil {
		t.Fatalf("failed to load asset: %v", err)
	}
	if string(data) != "high" {
		t.Errorf("expected last added path to win, got %q", data)
	}
}

func TestManager_AddSearchPathErrors(t *testing.T) {
	m := NewManager()
	defer m.Close()

	if err := m.AddSearchPath(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSearchPath(file); err == nil {
		t.Error("expected error for non-directory path")
	}
}

func TestManager_CacheStats(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "note.txt", []byte("cached"))

	m := NewManager()
	defer m.Close()
	if err := m.AddSearchPath(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Load("note.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Load("note.txt"); err != nil {
		t.Fatal(err)
	}

	hits, misses := m.cache.Stats()
	if hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", hits)
	}
	if misses != 1 {
		t.Errorf("expected 1 cache miss, got %d", misses)
	}
}

func TestManager_LoadModel(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "tri.obj", []byte(triangleOBJ))

	m := NewManager()
	defer m.Close()
	if err := m.AddSearchPath(dir); err != nil {
		t.Fatal(err)
	}

	models, err := m.LoadModel("tri.obj")
	if err != nil {
		t.Fatalf("failed to load model: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(models))
	}
	if models[0].Mesh.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", models[0].Mesh.TriangleCount())
	}
}

func TestManager_LoadTexture(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "pixel.tga", tinyTGA)

	m := NewManager()
	defer m.Close()
	if err := m.AddSearchPath(dir); err != nil {
		t.Fatal(err)
	}

	tga, err := m.LoadTexture("pixel.tga")
	if err != nil {
		t.Fatalf("failed to load texture: %v", err)
	}
	if tga.Header().Width != 1 || tga.Header().Height != 1 {
		t.Errorf("expected 1x1 texture, got %dx%d", tga.Header().Width, tga.Header().Height)
	}

	pixels, err := tga.DecodePixels()
	if err != nil {
		t.Fatal(err)
	}
	if len(pixels) != 1 || pixels[0].Color != 0x00C08040 {
		t.Errorf("unexpected pixel decode: %+v", pixels)
	}
}

func TestManager_LoadAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "tri.obj", []byte(triangleOBJ))

	m := NewManager()
	defer m.Close()

	models, err := m.LoadModel(filepath.Join(dir, "tri.obj"))
	if err != nil {
		t.Fatalf("failed to load by absolute path: %v", err)
	}
	if len(models) != 1 {
		t.Errorf("expected 1 model, got %d", len(models))
	}
}

func TestManager_NotFound(t *testing.T) {
	m := NewManager()
	defer m.Close()

	if _, err := m.Load("ghost.obj"); err == nil {
		t.Error("expected error for unknown asset")
	}
}
