package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strconv"
)

// ColumnType is the inferred type of a column's present cells.
type ColumnType string

const (
	TypeNumeric ColumnType = "numeric"
	TypeText    ColumnType = "text"
	TypeEmpty   ColumnType = "empty" // every cell missing
)

// Keep selects which occurrences DuplicateMask marks.
type Keep int

const (
	// KeepFirst marks every occurrence except the first of each fingerprint.
	KeepFirst Keep = iota
	// KeepNone marks every row whose fingerprint occurs more than once.
	KeepNone
)

// ColumnSet returns the set of column names.
func ColumnSet(t *Table) map[string]struct{} {
	set := make(map[string]struct{}, len(t.columns))
	for _, c := range t.columns {
		set[c] = struct{}{}
	}
	return set
}

// CommonColumns returns the columns present in both tables, in a's order.
func CommonColumns(a, b *Table) []string {
	var out []string
	for _, c := range a.columns {
		if b.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// SymmetricDifference returns the columns only in a and only in b, each sorted.
func SymmetricDifference(a, b *Table) (onlyA, onlyB []string) {
	for _, c := range a.columns {
		if !b.HasColumn(c) {
			onlyA = append(onlyA, c)
		}
	}
	for _, c := range b.columns {
		if !a.HasColumn(c) {
			onlyB = append(onlyB, c)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return onlyA, onlyB
}

// MissingCount returns the number of missing cells in a column.
func MissingCount(t *Table, column string) (int, error) {
	col, err := t.col(column)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range col {
		if v.IsMissing() {
			n++
		}
	}
	return n, nil
}

// MissingRate returns the fraction of missing cells in a column. An empty
// table has rate 0.
func MissingRate(t *Table, column string) (float64, error) {
	n, err := MissingCount(t, column)
	if err != nil {
		return 0, err
	}
	if t.rows == 0 {
		return 0, nil
	}
	return float64(n) / float64(t.rows), nil
}

// InferType classifies a column by parsing each present cell.
func InferType(t *Table, column string) (ColumnType, error) {
	col, err := t.col(column)
	if err != nil {
		return "", err
	}
	present := 0
	for _, v := range col {
		if v.IsMissing() {
			continue
		}
		present++
		if _, ok := v.Float(); !ok {
			return TypeText, nil
		}
	}
	if present == 0 {
		return TypeEmpty, nil
	}
	return TypeNumeric, nil
}

// IsNumeric reports whether every present cell parses as a number. A column
// with no present cells is numeric.
func IsNumeric(t *Table, column string) (bool, error) {
	typ, err := InferType(t, column)
	if err != nil {
		return false, err
	}
	return typ != TypeText, nil
}

// Fingerprint is the canonical identity of a row over a column list.
type Fingerprint string

// Short returns an abbreviated form for reports.
func (f Fingerprint) Short() string {
	if len(f) > 16 {
		return string(f[:16])
	}
	return string(f)
}

// RowFingerprints returns one fingerprint per row over the given columns.
// Each cell is hashed as a kind tag followed by a length-prefixed canonical
// payload, so no cell content can imitate a boundary between cells. Numbers
// are canonical (1 and 1.0 agree); missing cells hash identically.
func RowFingerprints(t *Table, columns []string) ([]Fingerprint, error) {
	cols := make([][]Value, len(columns))
	for i, c := range columns {
		col, err := t.col(c)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	out := make([]Fingerprint, t.rows)
	h := sha256.New()
	var lenBuf [4]byte
	for r := 0; r < t.rows; r++ {
		h.Reset()
		for _, col := range cols {
			writeCell(h, col[r], lenBuf[:])
		}
		out[r] = Fingerprint(hex.EncodeToString(h.Sum(nil)))
	}
	return out, nil
}

func writeCell(h hash.Hash, v Value, lenBuf []byte) {
	var payload string
	switch v.kind {
	case KindNumber:
		payload = strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		payload = v.text
	}
	h.Write([]byte{byte(v.kind)})
	binary.BigEndian.PutUint32(lenBuf, uint32(len(payload)))
	h.Write(lenBuf)
	h.Write([]byte(payload))
}

// FingerprintCounts counts occurrences of each fingerprint.
func FingerprintCounts(fps []Fingerprint) map[Fingerprint]int {
	counts := make(map[Fingerprint]int, len(fps))
	for _, fp := range fps {
		counts[fp]++
	}
	return counts
}

// DuplicateMask marks duplicate rows over the given columns according to keep.
func DuplicateMask(t *Table, columns []string, keep Keep) ([]bool, error) {
	fps, err := RowFingerprints(t, columns)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(fps))
	switch keep {
	case KeepFirst:
		seen := make(map[Fingerprint]struct{}, len(fps))
		for i, fp := range fps {
			if _, ok := seen[fp]; ok {
				mask[i] = true
				continue
			}
			seen[fp] = struct{}{}
		}
	case KeepNone:
		counts := FingerprintCounts(fps)
		for i, fp := range fps {
			mask[i] = counts[fp] > 1
		}
	default:
		return nil, fmt.Errorf("unknown keep policy %d", keep)
	}
	return mask, nil
}

// CountTrue counts set entries of a mask.
func CountTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
