package imagehash

import (
	"fmt"
	"image"
	"io"

	_ "image/gif"  // platform post images
	_ "image/jpeg" // platform post images
	_ "image/png"  // platform post images and Mii renders

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp" // CDN re-encodes some images as webp
)

// hashBits is the length of the perception hash in bits. Distances are
// normalized against it so callers work with a 0-1 scale regardless of the
// underlying hash width.
const hashBits = 64

// WorstDistance is the normalized distance assigned to records that carry
// no image hash (or an unparseable one). It is the maximum of the scale, so
// hashless records always sort after every record with a real hash.
const WorstDistance = 1.0

// Hash decodes an image and returns its perceptual hash in string form.
// The same function runs at ingestion time and at query time, so stored and
// query hashes are always comparable.
func Hash(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("failed to compute perception hash: %w", err)
	}
	return h.ToString(), nil
}

// Distance returns the normalized Hamming distance between a stored hash
// and a parsed query hash. A missing or malformed stored hash yields
// WorstDistance rather than an error: one corrupt row must not fail a
// whole similarity search.
func Distance(stored string, query *goimagehash.ImageHash) float64 {
	if stored == "" {
		return WorstDistance
	}

	sh, err := goimagehash.ImageHashFromString(stored)
	if err != nil {
		return WorstDistance
	}

	d, err := sh.Distance(query)
	if err != nil {
		return WorstDistance
	}
	return float64(d) / hashBits
}

// parseQuery decodes and hashes the query image once per search.
func parseQuery(r io.Reader) (*goimagehash.ImageHash, error) {
	s, err := Hash(r)
	if err != nil {
		return nil, err
	}
	return goimagehash.ImageHashFromString(s)
}
