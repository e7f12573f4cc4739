package pipeline

import (
	"testing"
	"time"
)

var kampala = time.FixedZone("EAT", 3*60*60)

func TestNormalizeDateFeedLayout(t *testing.T) {
	t.Parallel()

	got, ok := NormalizeDate("Mon, 02 Jan 2023 10:00:00 GMT", kampala)
	if !ok {
		t.Fatal("expected the feed layout to parse")
	}
	want := time.Date(2023, 1, 2, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected normalized time: got %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected zone stripped, got %v", got.Location())
	}
}

func TestNormalizeDateCompactLayout(t *testing.T) {
	t.Parallel()

	got, ok := NormalizeDate("20230102100000", kampala)
	if !ok {
		t.Fatal("expected the compact layout to parse")
	}
	want := time.Date(2023, 1, 2, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected normalized time: got %v, want %v", got, want)
	}
}

func TestNormalizeDateISOLayouts(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"2023-01-02T10:00:00Z", "2023-01-02 10:00:00"} {
		got, ok := NormalizeDate(raw, time.UTC)
		if !ok {
			t.Fatalf("expected %q to parse", raw)
		}
		want := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("unexpected normalized time for %q: got %v, want %v", raw, got, want)
		}
	}
}

func TestNormalizeDateUnparseable(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "yesterday", "02/01/2023"} {
		if _, ok := NormalizeDate(raw, time.UTC); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestNormalizeDateNilLocationDefaultsToUTC(t *testing.T) {
	t.Parallel()

	got, ok := NormalizeDate("20230102100000", nil)
	if !ok {
		t.Fatal("expected the compact layout to parse")
	}
	want := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected normalized time: got %v, want %v", got, want)
	}
}
