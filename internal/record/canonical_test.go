package record

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	data, err := MarshalCanonical(Record{"b": int64(2), "a": int64(1), "c": nil})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":null}`, string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(data))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	data, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(data))
}

func TestMarshalCanonical_EscapedBackslashKept(t *testing.T) {
	data, err := MarshalCanonical(`a\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028"`, string(data))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "e\u0301" // e + combining acute
	composed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalCanonical_Numbers(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{int64(42), "42"},
		{42, "42"},
		{1.5, "1.5"},
		{float64(30), "30"},
		{float32(0.25), "0.25"},
	}
	for _, tt := range tests {
		data, err := MarshalCanonical(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(data))
	}
}

func TestMarshalCanonical_RejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(math.NaN())
	require.Error(t, err)

	_, err = MarshalCanonical(math.Inf(1))
	require.Error(t, err)
}

func TestMarshalCanonical_RejectsAbsent(t *testing.T) {
	_, err := MarshalCanonical(Record{"x": Absent})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent")
}

func TestMarshalCanonical_Time(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	data, err := MarshalCanonical(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02T02:04:05Z"`, string(data))
}

func TestMarshalCanonical_TypedSlices(t *testing.T) {
	data, err := MarshalCanonical([]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, `["x","y"]`, string(data))

	data, err = MarshalCanonical([]Record{{"a": true}})
	require.NoError(t, err)
	assert.Equal(t, `[{"a":true}]`, string(data))
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FFFD
	// in UTF-16 but after it in UTF-8.
	m := map[string]any{"\uFFFD": 1, "\U0001F600": 2}
	assert.Equal(t, []string{"\U0001F600", "\uFFFD"}, SortedKeys(m))
}

func TestDigest_Deterministic(t *testing.T) {
	a := Record{"x": int64(1), "y": []any{"a", "b"}}
	b := Record{"y": []any{"a", "b"}, "x": int64(1)}

	assert.Equal(t, MustDigest(DomainRecord, a), MustDigest(DomainRecord, b))
	assert.Len(t, MustDigest(DomainRecord, a), 64)
}

func TestDigest_DomainSeparation(t *testing.T) {
	v := Record{"x": int64(1)}
	assert.NotEqual(t, MustDigest(DomainRecord, v), MustDigest(DomainPage, v))
}

func TestDigest_Error(t *testing.T) {
	_, err := Digest(DomainRecord, Absent)
	require.Error(t, err)
}
