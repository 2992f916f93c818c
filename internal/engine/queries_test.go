package engine

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestChildrenOf_HierarchyDerivation(t *testing.T) {
	dir := t.TempDir()
	e := New([]string{dir})

	b := writeSourceFile(t, dir, "a/b.txt", "b\n")
	c := writeSourceFile(t, dir, "c.txt", "c\n")
	if e.CaptureFile(b) == nil || e.CaptureFile(c) == nil {
		t.Fatal("captures should succeed")
	}

	top := e.ChildrenOf(dir)
	if !reflect.DeepEqual(top.Dirs, []string{"a"}) {
		t.Errorf("Dirs = %v, want [a]", top.Dirs)
	}
	if !reflect.DeepEqual(top.Files, []string{"c.txt"}) {
		t.Errorf("Files = %v, want [c.txt]", top.Files)
	}

	sub := e.ChildrenOf(filepath.Join(dir, "a"))
	if len(sub.Dirs) != 0 {
		t.Errorf("Dirs under a = %v, want none", sub.Dirs)
	}
	if !reflect.DeepEqual(sub.Files, []string{"b.txt"}) {
		t.Errorf("Files under a = %v, want [b.txt]", sub.Files)
	}
}

func TestChildrenOf_DeepPathsCollapseToOneDir(t *testing.T) {
	dir := t.TempDir()
	e := New([]string{dir})

	for _, name := range []string{"a/x/1.txt", "a/y/2.txt", "a/3.txt"} {
		f := writeSourceFile(t, dir, name, "z\n")
		if e.CaptureFile(f) == nil {
			t.Fatalf("capture of %s should succeed", name)
		}
	}

	top := e.ChildrenOf(dir)
	if !reflect.DeepEqual(top.Dirs, []string{"a"}) {
		t.Errorf("Dirs = %v, want single synthetic entry [a]", top.Dirs)
	}
	if len(top.Files) != 0 {
		t.Errorf("Files = %v, want none", top.Files)
	}
}

func TestChildrenOf_EmptyDirsNeverAppear(t *testing.T) {
	dir := t.TempDir()
	e := New([]string{dir})

	// Real directory on disk with no captured file: invisible, because the
	// hierarchy is reconstructed from indexed leaves only.
	writeSourceFile(t, dir, "empty/ignored.txt", "x\n")
	captured := writeSourceFile(t, dir, "seen/file.txt", "x\n")
	if e.CaptureFile(captured) == nil {
		t.Fatal("capture should succeed")
	}

	top := e.ChildrenOf(dir)
	if !reflect.DeepEqual(top.Dirs, []string{"seen"}) {
		t.Errorf("Dirs = %v, want [seen]", top.Dirs)
	}
}

func TestRootsWithContent(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	e := New([]string{dirA, dirB})

	f := writeSourceFile(t, dirA, "a.txt", "a\n")
	if e.CaptureFile(f) == nil {
		t.Fatal("capture should succeed")
	}

	roots := e.RootsWithContent()
	if len(roots) != 1 {
		t.Fatalf("got %d roots with content, want 1", len(roots))
	}
	if roots[0].Path != e.Roots()[0].Path {
		t.Errorf("wrong root reported: %q", roots[0].Path)
	}
}

func TestFilePaths_Sorted(t *testing.T) {
	dir := t.TempDir()
	e := New([]string{dir})

	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		f := writeSourceFile(t, dir, name, "x\n")
		if e.CaptureFile(f) == nil {
			t.Fatalf("capture of %s should succeed", name)
		}
	}

	paths := e.FilePaths()
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(paths))
	}
	for i := 1; i < len(paths); i++ {
		if paths[i-1] > paths[i] {
			t.Errorf("paths not sorted: %q before %q", paths[i-1], paths[i])
		}
	}
}

func TestIsActive_Unknown(t *testing.T) {
	dir := t.TempDir()
	e := New([]string{dir})

	if e.IsActive(filepath.Join(dir, "nothing.txt")) {
		t.Error("unknown path should not be active")
	}
}
