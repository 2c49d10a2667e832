package source

import (
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.cs", []byte("class A {}"), 0)
	id2 := fs.Add("test.cs", []byte("class B {}"), 0)
	if id1 != 1 || id2 != 2 {
		t.Fatalf("unexpected ids %d %d", id1, id2)
	}
	latest, ok := fs.GetLatest("test.cs")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	if string(fs.Get(id1).Content) != "class A {}" {
		t.Errorf("first version lost: %q", fs.Get(id1).Content)
	}
	if fs.Get(FileID(42)) != nil {
		t.Errorf("expected nil for unknown file id")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.cs", []byte("class C\r\n{\n  int P;\n}\n"))

	file := fs.Get(id)
	if file.Flags&FileVirtual == 0 {
		t.Fatalf("expected FileVirtual flag")
	}
	if string(file.Content) != "class C\n{\n  int P;\n}\n" {
		t.Fatalf("CRLF not normalized: %q", file.Content)
	}

	sp, ok := fs.Locate(id, "P", 0)
	if !ok {
		t.Fatalf("needle not found")
	}
	start, end := fs.Resolve(sp)
	if start != (LineCol{Line: 3, Col: 7}) || end != (LineCol{Line: 3, Col: 8}) {
		t.Fatalf("unexpected position %+v-%+v", start, end)
	}

	nl := Span{File: id, Start: 7, End: 7}
	if got, _ := fs.Resolve(nl); got != (LineCol{Line: 1, Col: 8}) {
		t.Fatalf("newline should belong to the line it ends, got %+v", got)
	}
	if got := file.GetLine(3); got != "  int P;" {
		t.Fatalf("GetLine(3) = %q", got)
	}
	if got := file.GetLine(9); got != "" {
		t.Fatalf("GetLine past end = %q", got)
	}
}

func TestLocateNth(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("b.cs", []byte("void M(); void M(int x);"))

	first, ok := fs.Locate(id, "M", 0)
	if !ok || first.Start != 5 {
		t.Fatalf("first M at %v", first)
	}
	second, ok := fs.Locate(id, "M", 1)
	if !ok || second.Start != 15 {
		t.Fatalf("second M at %v", second)
	}
	if _, ok := fs.Locate(id, "M", 2); ok {
		t.Fatalf("third M must not exist")
	}
	if got := fs.Text(second); got != "M" {
		t.Fatalf("Text = %q", got)
	}
}

func TestLocateWord(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("c.cs", []byte("class Main { void M(); int Mx; void M(int x); }"))

	sp, ok := fs.LocateWord(id, "M", 1)
	if !ok || fs.Text(sp) != "M" || sp.Start != 36 {
		t.Fatalf("second whole-word M at %v", sp)
	}
	if _, ok := fs.LocateWord(id, "M", 2); ok {
		t.Fatalf("Main and Mx must not count")
	}
}

func TestSpanCompare(t *testing.T) {
	a := Span{File: 1, Start: 1, End: 4}
	b := Span{File: 1, Start: 1, End: 6}
	c := Span{File: 2, Start: 0, End: 1}

	if a.Compare(b) >= 0 || b.Compare(a) <= 0 {
		t.Errorf("end must break ties")
	}
	if b.Compare(c) >= 0 {
		t.Errorf("file must dominate")
	}
	if c.Compare(NoSpan) >= 0 {
		t.Errorf("NoSpan must sort last")
	}
	if !b.Contains(a) || a.Contains(b) {
		t.Errorf("Contains mismatch")
	}
	if got := a.Cover(b); got != b {
		t.Errorf("Cover = %v", got)
	}
}
