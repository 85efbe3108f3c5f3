package tabular

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Candidate is one text encoding the parser may try.
type Candidate struct {
	Name string // as configured, e.g. "windows-1250" or "utf-8-sig"
	enc  encoding.Encoding
	utf8 bool
}

// LookupCandidate resolves an encoding label. WHATWG labels are accepted
// (cp1250, latin2, ...). A "-sig" suffix is accepted for UTF-8; a leading
// BOM is stripped for every UTF-8 candidate regardless.
func LookupCandidate(name string) (Candidate, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	label = strings.TrimSuffix(label, "-sig")
	enc, err := htmlindex.Get(label)
	if err != nil {
		return Candidate{}, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	canonical, _ := htmlindex.Name(enc)
	return Candidate{Name: name, enc: enc, utf8: canonical == "utf-8"}, nil
}

// LookupCandidates resolves every label in order.
func LookupCandidates(names []string) ([]Candidate, error) {
	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		c, err := LookupCandidate(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// DecodeStrict converts data to UTF-8 and fails on any byte the encoding
// cannot represent.
func DecodeStrict(data []byte, c Candidate) (string, error) {
	if c.utf8 {
		b := bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w at offset %d", errInvalidUTF8, invalidUTF8Offset(b))
		}
		return string(b), nil
	}
	out, _, err := transform.Bytes(c.enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", c.Name, err)
	}
	// Single-byte decoders map undefined bytes to U+FFFD instead of failing.
	if i := bytes.IndexRune(out, utf8.RuneError); i >= 0 {
		return "", fmt.Errorf("%w (%s)", errNotRepresentable, c.Name)
	}
	return string(out), nil
}

// DecodeLossy converts data to UTF-8, replacing invalid sequences with U+FFFD.
func DecodeLossy(data []byte, c Candidate) (string, error) {
	dec := c.enc.NewDecoder()
	if c.utf8 {
		data = bytes.TrimPrefix(data, utf8BOM)
		dec = unicode.UTF8.NewDecoder()
	}
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", c.Name, err)
	}
	return string(out), nil
}

// Detection is the outcome of charset sniffing.
type Detection struct {
	Charset    string
	Confidence int
}

// DetectCharset guesses the charset of data with chardet.
func DetectCharset(data []byte) (Detection, error) {
	sample := data
	if len(sample) > 64*1024 {
		sample = sample[:64*1024]
	}
	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Detection{}, fmt.Errorf("detecting charset: %w", err)
	}
	return Detection{Charset: res.Charset, Confidence: res.Confidence}, nil
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
