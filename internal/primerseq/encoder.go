// Package primerseq encodes Primer records into the compact numeric form
// (base codes plus scalar thermodynamic features) the rest of the engine
// operates on.
package primerseq

import (
	"strconv"
	"strings"

	"github.com/alokmishra/primerpool/internal/model"
	"github.com/alokmishra/primerpool/internal/poolerr"
)

// minLength is the shortest sequence the Wallace-rule Tm approximation and
// dimer scorer are meaningful for.
const minLength = 6

// Encode converts a Primer to its EncodedPrimer form: uppercase, trim
// whitespace, map bases to codes, and derive Tm/GC/length. It returns
// InvalidSequenceError on any non-ACGT character (after normalization) or
// a sequence shorter than 6 bases.
func Encode(p model.Primer) (model.EncodedPrimer, error) {
	fwd := normalize(p.Forward)
	rev := normalize(p.Reverse)

	fwdCodes, err := codeSequence(fwd)
	if err != nil {
		return model.EncodedPrimer{}, poolerr.NewInvalidSequence(p.ID, err.Error())
	}
	revCodes, err := codeSequence(rev)
	if err != nil {
		return model.EncodedPrimer{}, poolerr.NewInvalidSequence(p.ID, err.Error())
	}

	fwdTm := wallaceTm(fwdCodes)
	revTm := wallaceTm(revCodes)

	return model.EncodedPrimer{
		Primer:    model.Primer{ID: p.ID, Gene: p.Gene, Forward: fwd, Reverse: rev},
		FwdCodes:  fwdCodes,
		RevCodes:  revCodes,
		FwdTm:     fwdTm,
		RevTm:     revTm,
		AvgTm:     (fwdTm + revTm) / 2,
		GCContent: gcContent(fwdCodes, revCodes),
		Length:    len(fwdCodes),
	}, nil
}

// EncodeAll encodes every primer in order, stopping at the first invalid
// sequence.
func EncodeAll(primers []model.Primer) ([]model.EncodedPrimer, error) {
	out := make([]model.EncodedPrimer, 0, len(primers))
	for _, p := range primers {
		enc, err := Encode(p)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func normalize(seq string) string {
	return strings.ToUpper(strings.TrimSpace(seq))
}

var baseCode = map[byte]model.Base{
	'A': model.BaseA,
	'C': model.BaseC,
	'G': model.BaseG,
	'T': model.BaseT,
}

func codeSequence(seq string) ([]model.Base, error) {
	if len(seq) < minLength {
		return nil, shortSequenceError{length: len(seq)}
	}
	out := make([]model.Base, len(seq))
	for i := 0; i < len(seq); i++ {
		code, ok := baseCode[seq[i]]
		if !ok {
			return nil, badCharError{pos: i, char: seq[i]}
		}
		out[i] = code
	}
	return out, nil
}

// wallaceTm applies the Wallace rule: Tm = 2*(A+T) + 4*(G+C).
func wallaceTm(codes []model.Base) float64 {
	var at, gc int
	for _, c := range codes {
		switch c {
		case model.BaseA, model.BaseT:
			at++
		case model.BaseC, model.BaseG:
			gc++
		}
	}
	return float64(2*at + 4*gc)
}

// gcContent returns the combined GC% across both forward and reverse codes.
func gcContent(fwd, rev []model.Base) float64 {
	var gc, total int
	for _, codes := range [2][]model.Base{fwd, rev} {
		for _, c := range codes {
			if c == model.BaseC || c == model.BaseG {
				gc++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(gc) / float64(total)
}

// Decode reverses codeSequence, reproducing the normalized sequence exactly
// (encode/decode round trip).
func Decode(codes []model.Base) string {
	var sb strings.Builder
	sb.Grow(len(codes))
	letters := [4]byte{'A', 'C', 'G', 'T'}
	for _, c := range codes {
		sb.WriteByte(letters[c])
	}
	return sb.String()
}

type shortSequenceError struct{ length int }

func (e shortSequenceError) Error() string {
	return "sequence length below minimum of 6 bases"
}

type badCharError struct {
	pos  int
	char byte
}

func (e badCharError) Error() string {
	return "invalid base character at position " + strconv.Itoa(e.pos)
}
