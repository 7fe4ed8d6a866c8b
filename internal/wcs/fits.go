package wcs

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"
)

const (
	cardSize  = 80
	blockSize = 2880

	// maxHeaderBlocks bounds the scan for END in a malformed file.
	maxHeaderBlocks = 64
)

var (
	// ErrMissingKeyword reports a header without a required WCS keyword.
	ErrMissingKeyword = errors.New("missing WCS keyword")

	// ErrUnsupportedProjection reports a CTYPE other than TAN.
	ErrUnsupportedProjection = errors.New("unsupported projection")
)

// LoadHeader reads the WCS solution from the primary header of a FITS file.
func LoadHeader(path string) (Transform, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return Transform{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	t, err := ParseHeader(reader)
	if err != nil {
		return Transform{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// ParseHeader reads 80-byte header cards in 2880-byte blocks up to END and
// builds a Transform from them. The linear part comes from CDi_j when any is
// present, otherwise from CDELTi with PCi_j or CROTA2.
func ParseHeader(r io.ReaderAt) (Transform, error) {
	cards, err := readCards(r)
	if err != nil {
		return Transform{}, err
	}

	h := newHeader(cards)
	var t Transform

	required := []struct {
		key string
		dst *float64
	}{
		{"CRPIX1", &t.CRPix1},
		{"CRPIX2", &t.CRPix2},
		{"CRVAL1", &t.CRVal1},
		{"CRVAL2", &t.CRVal2},
	}
	for _, f := range required {
		v, ok, err := h.float(f.key)
		if err != nil {
			return Transform{}, err
		}
		if !ok {
			return Transform{}, fmt.Errorf("%s: %w", f.key, ErrMissingKeyword)
		}
		*f.dst = v
	}

	t.CType1 = h.str("CTYPE1")
	t.CType2 = h.str("CTYPE2")
	for _, ct := range []string{t.CType1, t.CType2} {
		if ct != "" && !isTAN(ct) {
			return Transform{}, fmt.Errorf("CTYPE %q: %w", ct, ErrUnsupportedProjection)
		}
	}

	t.AOrder = int(h.floatOr("A_ORDER", 0))
	t.BOrder = int(h.floatOr("B_ORDER", 0))

	if err := h.linear(&t); err != nil {
		return Transform{}, err
	}

	if err := t.Validate(); err != nil {
		return Transform{}, err
	}
	return t, nil
}

func isTAN(ctype string) bool {
	ct := strings.ToUpper(strings.TrimSpace(ctype))
	return strings.HasSuffix(ct, "-TAN") || strings.HasSuffix(ct, "-TAN-SIP")
}

// readCards returns the raw cards before END.
func readCards(r io.ReaderAt) ([]string, error) {
	var cards []string
	block := make([]byte, blockSize)

	for b := 0; b < maxHeaderBlocks; b++ {
		n, err := r.ReadAt(block, int64(b*blockSize))
		if n < blockSize {
			if err == nil || errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("truncated header block %d (%d bytes)", b, n)
			}
			return nil, fmt.Errorf("read header block %d: %w", b, err)
		}

		for off := 0; off < blockSize; off += cardSize {
			card := string(block[off : off+cardSize])
			if strings.TrimRight(card[:8], " ") == "END" {
				return cards, nil
			}
			cards = append(cards, card)
		}
	}
	return nil, fmt.Errorf("no END card in first %d blocks", maxHeaderBlocks)
}

// header maps keywords to their raw value field.
type header map[string]string

func newHeader(cards []string) header {
	h := make(header, len(cards))
	for _, card := range cards {
		if len(card) < 10 || card[8:10] != "= " {
			continue // COMMENT, HISTORY, blank
		}
		key := strings.TrimRight(card[:8], " ")
		h[key] = cardValue(card[10:])
	}
	return h
}

// cardValue strips the inline comment and quotes from a value field.
func cardValue(field string) string {
	field = strings.TrimSpace(field)
	if strings.HasPrefix(field, "'") {
		// quoted string, '' escapes a quote
		var sb strings.Builder
		for i := 1; i < len(field); i++ {
			if field[i] == '\'' {
				if i+1 < len(field) && field[i+1] == '\'' {
					sb.WriteByte('\'')
					i++
					continue
				}
				break
			}
			sb.WriteByte(field[i])
		}
		return strings.TrimRight(sb.String(), " ")
	}
	if i := strings.IndexByte(field, '/'); i >= 0 {
		field = field[:i]
	}
	return strings.TrimSpace(field)
}

func (h header) str(key string) string {
	return h[key]
}

// float parses a numeric keyword. FITS allows D as the exponent marker.
func (h header) float(key string) (float64, bool, error) {
	raw, ok := h[key]
	if !ok {
		return 0, false, nil
	}
	raw = strings.ReplaceAll(strings.ToUpper(raw), "D", "E")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("keyword %s: %w", key, err)
	}
	return v, true, nil
}

func (h header) floatOr(key string, def float64) float64 {
	v, ok, err := h.float(key)
	if err != nil || !ok {
		return def
	}
	return v
}

func (h header) has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := h[k]; ok {
			return true
		}
	}
	return false
}

// linear fills the CD matrix and CDELT of t.
func (h header) linear(t *Transform) error {
	if h.has("CD1_1", "CD1_2", "CD2_1", "CD2_2") {
		t.CD1_1 = h.floatOr("CD1_1", 0)
		t.CD1_2 = h.floatOr("CD1_2", 0)
		t.CD2_1 = h.floatOr("CD2_1", 0)
		t.CD2_2 = h.floatOr("CD2_2", 0)
		t.CDelt1, t.CDelt2 = t.Scale()
		return nil
	}

	cdelt1, ok1, err := h.float("CDELT1")
	if err != nil {
		return err
	}
	cdelt2, ok2, err := h.float("CDELT2")
	if err != nil {
		return err
	}
	if !ok1 || !ok2 {
		return fmt.Errorf("need CDi_j or CDELT1/CDELT2: %w", ErrMissingKeyword)
	}
	t.CDelt1, t.CDelt2 = cdelt1, cdelt2

	if h.has("PC1_1", "PC1_2", "PC2_1", "PC2_2") {
		t.CD1_1 = cdelt1 * h.floatOr("PC1_1", 1)
		t.CD1_2 = cdelt1 * h.floatOr("PC1_2", 0)
		t.CD2_1 = cdelt2 * h.floatOr("PC2_1", 0)
		t.CD2_2 = cdelt2 * h.floatOr("PC2_2", 1)
		return nil
	}

	sinR, cosR := math.Sincos(degToRad(h.floatOr("CROTA2", 0)))
	t.CD1_1 = cdelt1 * cosR
	t.CD1_2 = -cdelt2 * sinR
	t.CD2_1 = cdelt1 * sinR
	t.CD2_2 = cdelt2 * cosR
	return nil
}
