package levels

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
)

const tinyLevel = `
id: %s
name: %s
heights: [[0, 0], [0, 0]]
start: {x: 0, y: 0, dir: 1}
goals: [{x: 1, y: 0}]
`

func writeLevel(t *testing.T, dir, file, id, name string) {
	t.Helper()
	body := []byte(fmt.Sprintf(tinyLevel, id, name))
	if err := os.WriteFile(filepath.Join(dir, file), body, 0o644); err != nil {
		t.Fatalf("write %s: %v", file, err)
	}
}

func TestBuiltinLoadAll(t *testing.T) {
	lvls, err := Builtin().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(lvls) != 8 {
		t.Fatalf("expected 8 built-in levels, got %d", len(lvls))
	}

	for i := 1; i < len(lvls); i++ {
		if lvls[i-1].ID >= lvls[i].ID {
			t.Errorf("levels not sorted: %s >= %s", lvls[i-1].ID, lvls[i].ID)
		}
	}
	for _, lvl := range lvls {
		if !lvl.Builtin {
			t.Errorf("%s: expected Builtin flag", lvl.ID)
		}
		if len(lvl.Issues) != 0 {
			t.Errorf("%s: unexpected issues %v", lvl.ID, lvl.Issues)
		}
	}
}

func TestBuiltinSolutionsSucceed(t *testing.T) {
	lvls, err := Builtin().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	for _, lvl := range lvls {
		t.Run(lvl.ID, func(t *testing.T) {
			if lvl.Solution == nil {
				t.Fatal("built-in level has no solution")
			}
			res := core.NewSimulation(lvl.ToWorld(), *lvl.Solution).Run()
			if !res.Success {
				t.Errorf("solution failed: %s after %d steps at %v", res.Reason, res.Steps, res.Final.Pos)
			}
		})
	}
}

func TestBuiltinLoadByID(t *testing.T) {
	lvl, err := Builtin().LoadByID("05")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	if lvl.Name != "Ice Run" {
		t.Errorf("expected Ice Run, got %q", lvl.Name)
	}
	if len(lvl.Ice) != 4 {
		t.Errorf("expected 4 ice tiles, got %d", len(lvl.Ice))
	}

	if _, err := Builtin().LoadByID("nope"); err == nil {
		t.Error("expected error for unknown ID")
	}
}

func TestLoaderSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "b.yaml", "b", "Bee")
	writeLevel(t, dir, "a.yml", "a", "Ay")
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("heights: [[0"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeLevel(t, sub, "c.json", "c", "Sea")

	lvls, err := NewLoader(dir).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	ids := make([]string, len(lvls))
	for i, l := range lvls {
		ids[i] = l.ID
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("expected [a b c], got %v", ids)
	}
	if lvls[2].FilePath != filepath.Join(dir, "nested", "c.json") {
		t.Errorf("unexpected file path %q", lvls[2].FilePath)
	}
}

func TestReadFileDerivesID(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "custom.yaml", `""`, "Custom")

	lvl, err := ReadFile(filepath.Join(dir, "custom.yaml"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if lvl.ID != "custom" {
		t.Errorf("expected ID from file name, got %q", lvl.ID)
	}
	if lvl.Builtin {
		t.Error("disk level must not be flagged built-in")
	}
}

func TestCatalogOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "first.yaml", `"01"`, "Replaced")
	writeLevel(t, dir, "extra.yaml", "zz", "Extra")

	lvls, err := Catalog(dir, nil)
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(lvls) != 9 {
		t.Fatalf("expected 9 levels, got %d", len(lvls))
	}
	if lvls[0].ID != "01" || lvls[0].Name != "Replaced" || lvls[0].Builtin {
		t.Errorf("expected disk level to replace 01, got %+v", lvls[0].Level)
	}
	if lvls[8].ID != "zz" {
		t.Errorf("expected zz last, got %q", lvls[8].ID)
	}
}
