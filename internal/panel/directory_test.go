package panel

import (
	"math/rand/v2"
	"reflect"
	"testing"
	"time"

	"github.com/kk-code-lab/rmill/internal/fs"
)

func entry(name string, dir bool) fs.DirectoryEntry {
	return fs.DirectoryEntry{
		Name:     name,
		Path:     "/tmp/x/" + name,
		IsDir:    dir,
		IsHidden: fs.IsHiddenName(name),
	}
}

// .a b .c d .e
func mixedPanel(show bool) DirectoryPanel {
	entries := []fs.DirectoryEntry{
		entry(".a", false),
		entry("b", false),
		entry(".c", false),
		entry("d", false),
		entry(".e", false),
	}
	return NewDirectoryPanel("/tmp/x", entries, time.Time{}, show)
}

func checkHiddenInvariant(t *testing.T, p DirectoryPanel) {
	t.Helper()
	var want []int
	for i, e := range p.Elements() {
		if !e.IsHidden {
			want = append(want, i)
		}
	}
	got := p.VisibleIndex()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("visible index %v, want %v", got, want)
	}
	if !p.ShowHidden() && len(got) > 0 {
		if p.SelectedIndex() != got[p.CursorInVisible()] {
			t.Fatalf("selected %d != visible[%d]=%d", p.SelectedIndex(), p.CursorInVisible(), got[p.CursorInVisible()])
		}
		if p.Selected().IsHidden {
			t.Fatalf("hidden entry selected while hidden entries are not shown")
		}
	}
}

func TestNewDirectoryPanelSelectsFirstShown(t *testing.T) {
	p := mixedPanel(false)
	if sel := p.Selected(); sel == nil || sel.Name != "b" {
		t.Fatalf("expected b selected, got %+v", sel)
	}
	p = mixedPanel(true)
	if sel := p.Selected(); sel == nil || sel.Name != ".a" {
		t.Fatalf("expected .a selected, got %+v", sel)
	}
}

func TestHidingMovesToPrecedingVisible(t *testing.T) {
	p := mixedPanel(true)
	p.Move(2) // .c
	if p.Selected().Name != ".c" {
		t.Fatalf("setup: expected .c, got %s", p.Selected().Name)
	}
	p.SetShowHidden(false)
	if got := p.Selected().Name; got != "b" {
		t.Fatalf("expected nearest preceding visible entry b, got %s", got)
	}
	checkHiddenInvariant(t, p)
}

func TestHidingWithNothingBeforeFallsBackToFirstVisible(t *testing.T) {
	p := mixedPanel(true)
	p.MoveTop() // .a
	p.SetShowHidden(false)
	if got := p.Selected().Name; got != "b" {
		t.Fatalf("expected b, got %s", got)
	}
	checkHiddenInvariant(t, p)
}

func TestShowingHiddenKeepsSelection(t *testing.T) {
	p := mixedPanel(false)
	p.Move(1) // d
	p.SetShowHidden(true)
	if got := p.Selected().Name; got != "d" {
		t.Fatalf("expected d to stay selected, got %s", got)
	}
	if p.Position() != 3 {
		t.Fatalf("expected position 3 among all entries, got %d", p.Position())
	}
}

func TestHiddenInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	p := mixedPanel(false)
	for i := 0; i < 500; i++ {
		switch rng.IntN(5) {
		case 0:
			p.SetShowHidden(!p.ShowHidden())
		case 1:
			p.Move(rng.IntN(7) - 3)
		case 2:
			p.MoveTop()
		case 3:
			p.MoveBottom()
		case 4:
			p.SelectPath("/tmp/x/" + []string{".a", "b", ".c", "d", ".e"}[rng.IntN(5)])
		}
		checkHiddenInvariant(t, p)
	}
}

func TestAllHiddenHasNoSelection(t *testing.T) {
	entries := []fs.DirectoryEntry{entry(".a", false), entry(".b", false)}
	p := NewDirectoryPanel("/tmp/x", entries, time.Time{}, false)
	if p.Selected() != nil {
		t.Fatalf("expected no selection, got %+v", p.Selected())
	}
	if n, m := p.IndexVsTotal(); n != 0 || m != 0 {
		t.Fatalf("IndexVsTotal = %d/%d", n, m)
	}
	p.SetShowHidden(true)
	if p.Selected() == nil {
		t.Fatalf("expected a selection once hidden entries are shown")
	}
}

func TestMoveClamps(t *testing.T) {
	p := mixedPanel(false)
	if p.Move(-1) {
		t.Fatalf("moving above the top should not change the selection")
	}
	p.Move(10)
	if got := p.Selected().Name; got != "d" {
		t.Fatalf("expected clamp at d, got %s", got)
	}
	if n, m := p.IndexVsTotal(); n != 2 || m != 2 {
		t.Fatalf("IndexVsTotal = %d/%d, want 2/2", n, m)
	}
}

func TestSelectPathRefusesHiddenWhileHidden(t *testing.T) {
	p := mixedPanel(false)
	if p.SelectPath("/tmp/x/.c") {
		t.Fatalf("hidden entry should not be selectable")
	}
	if !p.SelectPath("/tmp/x/d") || p.Selected().Name != "d" {
		t.Fatalf("expected d to be selectable")
	}
}

func TestMergeKeepsSelectionAndToggle(t *testing.T) {
	old := mixedPanel(true)
	old.SelectPath("/tmp/x/d")
	old.ToggleMark()

	entries := append([]fs.DirectoryEntry{entry("a0", false)}, mixedPanel(true).Elements()...)
	fs.SortEntries(entries)
	fresh := NewDirectoryPanel("/tmp/x", entries, time.Time{}, false)
	merged := old.Merge(fresh)
	if !merged.ShowHidden() {
		t.Fatalf("merge must keep the hidden toggle")
	}
	if got := merged.Selected().Name; got != "d" {
		t.Fatalf("merge should keep the selected entry, got %s", got)
	}
	if !merged.IsMarked("/tmp/x/d") {
		t.Fatalf("merge should keep marks on surviving entries")
	}
}

func TestMergeDifferentPathStartsAtTop(t *testing.T) {
	old := mixedPanel(false)
	old.Move(1)
	other := NewDirectoryPanel("/tmp/y", []fs.DirectoryEntry{entry("z", false), entry("zz", false)}, time.Time{}, true)
	merged := old.Merge(other)
	if merged.ShowHidden() {
		t.Fatalf("toggle must follow the receiver")
	}
	if merged.Selected().Name != "z" {
		t.Fatalf("expected first entry selected, got %s", merged.Selected().Name)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := mixedPanel(false)
	p.ToggleMark()
	c := p.Clone()
	c.Move(1)
	c.ToggleMark()
	if p.Selected().Name != "b" || !p.IsMarked("/tmp/x/b") {
		t.Fatalf("original changed through clone")
	}
}

func TestMarkedInListingOrder(t *testing.T) {
	p := mixedPanel(false)
	p.MoveBottom()
	p.ToggleMark()
	p.MoveTop()
	p.ToggleMark()
	want := []string{"/tmp/x/b", "/tmp/x/d"}
	if got := p.Marked(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Marked() = %v, want %v", got, want)
	}
	p.ClearMarks()
	if p.Marked() != nil {
		t.Fatalf("expected no marks")
	}
}

func TestHashChangesWithListing(t *testing.T) {
	a := NewDirectoryPanel("/tmp/x", []fs.DirectoryEntry{entry("a", false)}, time.Time{}, false)
	b := NewDirectoryPanel("/tmp/x", []fs.DirectoryEntry{entry("b", false)}, time.Time{}, false)
	if a.Hash() == b.Hash() {
		t.Fatalf("different listings should hash differently")
	}
}
