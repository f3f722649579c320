package vectorize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Jazz Night", []string{"jazz", "night"}},
		{"drops single characters", "A Day at 5 PM", []string{"day", "at", "pm"}},
		{"punctuation splits", "rock-n-roll, live!", []string{"rock", "roll", "live"}},
		{"underscore is a word character", "open_air fest", []string{"open_air", "fest"}},
		{"digits", "Festival 2024", []string{"festival", "2024"}},
		{"unicode letters", "Café Ébène", []string{"café", "ébène"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestTfidfVectorizer_Fit(t *testing.T) {
	v := NewTfidfVectorizer()
	v.Fit([]string{"jazz night", "rock night", "jazz jazz brunch"})

	require.True(t, v.Fitted())
	assert.Equal(t, map[string]int{"brunch": 0, "jazz": 1, "night": 2, "rock": 3}, v.Vocabulary)

	// idf = ln((1+n)/(1+df)) + 1 with n = 3
	assert.InDelta(t, math.Log(4.0/2.0)+1, v.IDF[0], 1e-12)
	assert.InDelta(t, math.Log(4.0/3.0)+1, v.IDF[1], 1e-12)
	assert.InDelta(t, math.Log(4.0/3.0)+1, v.IDF[2], 1e-12)
	assert.InDelta(t, math.Log(4.0/2.0)+1, v.IDF[3], 1e-12)
}

func TestTfidfVectorizer_Transform(t *testing.T) {
	docs := []string{"jazz night", "rock night", "jazz jazz brunch", "!!"}
	v := NewTfidfVectorizer()
	m, err := v.FitTransform(docs)
	require.NoError(t, err)
	require.Equal(t, len(docs), m.Rows())
	assert.Equal(t, 4, m.Cols)

	for i := 0; i < 3; i++ {
		row, err := m.Row(i)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, row.SquaredNorm(), 1e-12, "row %d should be unit length", i)
	}

	// raw term frequency: "jazz" appears twice in row 2
	row, _ := m.Row(2)
	require.Equal(t, []int{0, 1}, row.Indices)
	brunch := 1 * v.IDF[0]
	jazz := 2 * v.IDF[1]
	norm := math.Sqrt(brunch*brunch + jazz*jazz)
	assert.InDelta(t, brunch/norm, row.Values[0], 1e-12)
	assert.InDelta(t, jazz/norm, row.Values[1], 1e-12)

	empty, _ := m.Row(3)
	assert.Zero(t, empty.Nnz())
}

func TestTfidfVectorizer_TransformUnknownTerms(t *testing.T) {
	v := NewTfidfVectorizer()
	v.Fit([]string{"jazz night"})
	vec, err := v.TransformOne("opera gala")
	require.NoError(t, err)
	assert.Zero(t, vec.Nnz())
}

func TestTfidfVectorizer_NotFitted(t *testing.T) {
	v := NewTfidfVectorizer()
	_, err := v.Transform([]string{"x"})
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = v.TransformOne("x")
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestEuclideanDistance(t *testing.T) {
	a := Vector{Indices: []int{0, 2}, Values: []float64{0.6, 0.8}}
	b := Vector{Indices: []int{1}, Values: []float64{1}}
	assert.InDelta(t, 0.0, EuclideanDistance(a, a), 1e-12)
	assert.InDelta(t, math.Sqrt2, EuclideanDistance(a, b), 1e-12)
	assert.InDelta(t, 1.0, EuclideanDistance(a, Vector{}), 1e-12)
	assert.InDelta(t, 0.6, a.Dot(Vector{Indices: []int{0, 1}, Values: []float64{1, 5}}), 1e-12)
}

func TestMatrix_RowOutOfRange(t *testing.T) {
	m := &Matrix{Data: []Vector{{}}, Cols: 1}
	_, err := m.Row(1)
	assert.Error(t, err)
	_, err = m.Row(-1)
	assert.Error(t, err)

	var nilMatrix *Matrix
	assert.Zero(t, nilMatrix.Rows())
}
