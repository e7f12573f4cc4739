package watchlist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandQueriesCanonicalFirst(t *testing.T) {
	t.Parallel()

	w := &Watchlist{
		Materials: []string{"LPG GAS"},
		Synonyms: map[string][]string{
			"LPG GAS": {"liquefied petroleum gas", "propane", "butane"},
		},
	}

	got := w.ExpandQueries("LPG GAS")
	want := []string{"LPG GAS", "liquefied petroleum gas", "propane", "butane"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected queries\nwant: %q\ngot:  %q", want, got)
	}
}

func TestExpandQueriesRemovesDuplicatesPreservingOrder(t *testing.T) {
	t.Parallel()

	w := &Watchlist{
		Synonyms: map[string][]string{
			"TRIETHANOLAMINE": {"TEA", "triethanolamine", "TEA"},
		},
	}

	got := w.ExpandQueries("TRIETHANOLAMINE")
	want := []string{"TRIETHANOLAMINE", "TEA", "triethanolamine"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected queries\nwant: %q\ngot:  %q", want, got)
	}
}

func TestExpandQueriesUnknownMaterial(t *testing.T) {
	t.Parallel()

	w := &Watchlist{}
	got := w.ExpandQueries("ACETONE")
	if len(got) != 1 || got[0] != "ACETONE" {
		t.Fatalf("expected canonical-only expansion, got %q", got)
	}
}

func TestLoadValidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watchlist.json")
	payload := `{
		"watchlist_version":"v1",
		"materials":["LPG GAS"],
		"synonyms":{"LPG GAS":["propane"]},
		"supply_terms":["Suez Canal"],
		"ports":["Mombasa"]
	}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	w, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed, got: %v", err)
	}
	if len(w.Materials) != 1 || w.Materials[0] != "LPG GAS" {
		t.Fatalf("unexpected materials: %q", w.Materials)
	}

	hints := w.GlobalHints()
	want := []string{"Suez Canal", "Mombasa"}
	if !reflect.DeepEqual(hints, want) {
		t.Fatalf("unexpected global hints\nwant: %q\ngot:  %q", want, hints)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watchlist.json")
	if err := os.WriteFile(path, []byte(`{"watchlist_version":"v2","materials":["X"]}`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected load to fail for unsupported version")
	}
}
