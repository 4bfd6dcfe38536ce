package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCell(t *testing.T) {
	tokens := []string{"", "NA", "NaN"}

	tests := []struct {
		name  string
		input string
		kind  Kind
		want  string
	}{
		{"empty is missing", "", KindMissing, "<NA>"},
		{"NA token", "NA", KindMissing, "<NA>"},
		{"padded token", "  NaN ", KindMissing, "<NA>"},
		{"integer", "42", KindNumber, "42"},
		{"float", "1.0", KindNumber, "1"},
		{"negative", "-5", KindNumber, "-5"},
		{"text", "Тошкент", KindText, "Тошкент"},
		{"infinity stays text", "Inf", KindText, "Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseCell(tt.input, tokens)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestValueFloat(t *testing.T) {
	f, ok := Number(2.5).Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	f, ok = Text(" 7 ").Float()
	assert.True(t, ok, "numeric text parses")
	assert.Equal(t, 7.0, f)

	_, ok = Text("seven").Float()
	assert.False(t, ok)

	_, ok = Text("NaN").Float()
	assert.False(t, ok)

	_, ok = Missing().Float()
	assert.False(t, ok)
}

func TestNumberNormalisation(t *testing.T) {
	assert.True(t, Number(math.NaN()).IsMissing(), "NaN is stored as missing")
	assert.True(t, Number(math.Copysign(0, -1)).Equal(Number(0)), "-0 folds into 0")
	assert.True(t, Number(1).Equal(Number(1.0)))
	assert.False(t, Number(1).Equal(Text("1")))
}

func TestFromAny(t *testing.T) {
	ts := time.Date(2026, 2, 17, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input interface{}
		kind  Kind
		want  string
	}{
		{"nil", nil, KindMissing, "<NA>"},
		{"int64", int64(42), KindNumber, "42"},
		{"int", 100, KindNumber, "100"},
		{"int32", int32(200), KindNumber, "200"},
		{"int16", int16(300), KindNumber, "300"},
		{"int8", int8(127), KindNumber, "127"},
		{"uint", uint(1), KindNumber, "1"},
		{"uint64", uint64(2), KindNumber, "2"},
		{"uint32", uint32(3), KindNumber, "3"},
		{"uint16", uint16(4), KindNumber, "4"},
		{"uint8", uint8(5), KindNumber, "5"},
		{"float64", 1.5, KindNumber, "1.5"},
		{"float32", float32(0.5), KindNumber, "0.5"},
		{"NaN", math.NaN(), KindMissing, "<NA>"},
		{"bool true", true, KindNumber, "1"},
		{"bool false", false, KindNumber, "0"},
		{"numeric bytes", []byte("18"), KindNumber, "18"},
		{"text bytes", []byte("ha"), KindText, "ha"},
		{"string", "yo'q", KindText, "yo'q"},
		{"time", ts, KindText, "2026-02-17T10:00:00Z"},
		{"value passthrough", Text("x"), KindText, "x"},
		{"unsupported", struct{}{}, KindMissing, "<NA>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FromAny(tt.input)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "missing", KindMissing.String())
	assert.Equal(t, "number", KindNumber.String())
	assert.Equal(t, "text", KindText.String())
}
