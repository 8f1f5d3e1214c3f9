package imagehash

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/corona10/goimagehash"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// fakeStore returns a fixed corpus.
type fakeStore struct {
	content []model.Content
	users   []model.User
}

func (f *fakeStore) AllContent(context.Context) ([]model.Content, error) {
	out := make([]model.Content, len(f.content))
	copy(out, f.content)
	return out, nil
}

func (f *fakeStore) AllUsers(context.Context) ([]model.User, error) {
	out := make([]model.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

// mustHash parses a hash string or fails the test.
func mustHash(t *testing.T, s string) *goimagehash.ImageHash {
	t.Helper()
	h, err := goimagehash.ImageHashFromString(s)
	if err != nil {
		t.Fatalf("failed to parse hash %q: %v", s, err)
	}
	return h
}

// testImage encodes a deterministic noisy PNG. Noise rather than a flat
// fill: a perception hash of a featureless image is degenerate.
func testImage(t *testing.T, seed int64) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// TestDistance tests normalized distance computation.
func TestDistance(t *testing.T) {
	t.Parallel()

	query := mustHash(t, "p:0")

	tests := []struct {
		name   string
		stored string
		want   float64
	}{
		{name: "identical hash", stored: "p:0", want: 0},
		{name: "six bits apart", stored: "p:3f", want: 6.0 / 64},
		{name: "half the bits apart", stored: "p:ffffffff", want: 0.5},
		{name: "all bits apart", stored: "p:ffffffffffffffff", want: 1.0},
		{name: "missing hash gets sentinel", stored: "", want: WorstDistance},
		{name: "malformed hash gets sentinel", stored: "not-a-hash", want: WorstDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Distance(tt.stored, query); got != tt.want {
				t.Errorf("Distance(%q) = %v, want %v", tt.stored, got, tt.want)
			}
		})
	}
}

// TestRankContent tests similarity ordering and the missing-hash sentinel.
func TestRankContent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{content: []model.Content{
		{ID: "far", ImageHash: "p:3ffffffffffffff"},  // 58 bits from zero
		{ID: "near", ImageHash: "p:3f"},              // 6 bits from zero
		{ID: "hashless"},                             // sentinel 1.0
		{ID: "mid", ImageHash: "p:ffffffff"},         // 32 bits from zero
	}}
	engine := NewEngine(store, 50)

	got, err := engine.rankContent(context.Background(), mustHash(t, "p:0"))
	if err != nil {
		t.Fatalf("rankContent() error = %v", err)
	}

	wantOrder := []string{"near", "mid", "far", "hashless"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d results, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("result[%d] = %s (distance %v), want %s", i, got[i].ID, got[i].Distance, want)
		}
	}

	// Distances are populated ascending.
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Errorf("distances not ascending at %d: %v < %v", i, got[i].Distance, got[i-1].Distance)
		}
	}
	if got[len(got)-1].Distance != WorstDistance {
		t.Errorf("hashless record distance = %v, want %v", got[len(got)-1].Distance, WorstDistance)
	}
}

// TestRankLimit tests the result cap.
func TestRankLimit(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	for i := 0; i < 80; i++ {
		store.content = append(store.content, model.Content{ID: "c", ImageHash: "p:0"})
	}
	engine := NewEngine(store, 50)

	got, err := engine.rankContent(context.Background(), mustHash(t, "p:0"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 50 {
		t.Errorf("got %d results, want the limit of 50", len(got))
	}
}

// TestRankUsers tests avatar ranking with the sentinel.
func TestRankUsers(t *testing.T) {
	t.Parallel()

	store := &fakeStore{users: []model.User{
		{PID: 1},                       // no avatar hash
		{PID: 2, MiiHash: "p:ff"},      // 8 bits
		{PID: 3, MiiHash: "p:3"},       // 2 bits
	}}
	engine := NewEngine(store, 50)

	got, err := engine.rankUsers(context.Background(), mustHash(t, "p:0"))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].PID != 3 || got[1].PID != 2 || got[2].PID != 1 {
		t.Errorf("order = [%d %d %d], want [3 2 1]", got[0].PID, got[1].PID, got[2].PID)
	}
}

// TestSearchContentEndToEnd tests the image-decode path: the archived copy
// of the query image must rank first at distance zero.
func TestSearchContentEndToEnd(t *testing.T) {
	t.Parallel()

	img := testImage(t, 1)
	hash, err := Hash(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" {
		t.Fatal("Hash() returned empty string")
	}

	store := &fakeStore{content: []model.Content{
		{ID: "hashless"},
		{ID: "original", ImageHash: hash},
	}}
	engine := NewEngine(store, 50)

	got, err := engine.SearchContent(context.Background(), bytes.NewReader(img))
	if err != nil {
		t.Fatalf("SearchContent() error = %v", err)
	}
	if got[0].ID != "original" {
		t.Errorf("first result = %s, want original", got[0].ID)
	}
	if got[0].Distance != 0 {
		t.Errorf("identical image distance = %v, want 0", got[0].Distance)
	}
	if got[1].ID != "hashless" || got[1].Distance != WorstDistance {
		t.Errorf("hashless record should rank last at %v, got %+v", WorstDistance, got[1])
	}
}

// TestHashRejectsGarbage tests that non-image uploads fail cleanly.
func TestHashRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := Hash(bytes.NewReader([]byte("definitely not an image"))); err == nil {
		t.Error("Hash() should fail on non-image input")
	}
}
