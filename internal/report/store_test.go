package report

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/funvibe/pyhint/internal/pipeline"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	sigs := []pipeline.Signature{
		{Name: "first", Line: 3, Params: []pipeline.Param{{Name: "xs", Types: []string{"list[T]"}}}, Returns: []string{}},
		{Name: "Box.get", Line: 7, Params: []pipeline.Param{{Name: "self", Types: []string{"Box"}}}, Returns: []string{"int", "str"}},
	}
	bindings := []pipeline.Binding{
		{Name: "n", Line: 10, Types: []string{"int"}},
	}
	if err := store.Save("s1", "a.py", sigs, bindings); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save("s2", "b.py", sigs[:1], nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sessions, err := store.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if !reflect.DeepEqual(sessions, []string{"s1", "s2"}) {
		t.Errorf("Sessions = %v, want [s1 s2]", sessions)
	}

	gotSigs, err := store.Signatures("s1")
	if err != nil {
		t.Fatalf("Signatures: %v", err)
	}
	if len(gotSigs) != 2 {
		t.Fatalf("Signatures returned %d rows, want 2", len(gotSigs))
	}
	for i, want := range sigs {
		if gotSigs[i].File != "a.py" || !reflect.DeepEqual(gotSigs[i].Signature, want) {
			t.Errorf("signature %d = %+v, want %+v in a.py", i, gotSigs[i], want)
		}
	}

	gotBindings, err := store.Bindings("s1")
	if err != nil {
		t.Fatalf("Bindings: %v", err)
	}
	if len(gotBindings) != 1 || !reflect.DeepEqual(gotBindings[0].Binding, bindings[0]) {
		t.Errorf("Bindings = %+v, want %+v", gotBindings, bindings)
	}

	if got, _ := store.Bindings("s2"); len(got) != 0 {
		t.Errorf("session s2 has %d bindings, want 0", len(got))
	}
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Save("s1", "a.py", nil, []pipeline.Binding{{Name: "x", Line: 1, Types: []string{"str"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	got, err := store.Bindings("s1")
	if err != nil || len(got) != 1 || got[0].Name != "x" {
		t.Errorf("Bindings after reopen = %+v, %v", got, err)
	}
}
