// Package vectorize turns event names into L2-normalized TF-IDF vectors.
package vectorize

import (
	"errors"
	"math"
	"sort"

	"github.com/hyperjump/tabiji/pkg/utils"
)

// ErrNotFitted is returned by Transform before Fit.
var ErrNotFitted = errors.New("vectorizer not fitted")

// TfidfVectorizer holds a vocabulary and smoothed inverse document frequencies.
// Term counts are raw, idf is ln((1+n)/(1+df))+1 and rows are scaled to unit length.
type TfidfVectorizer struct {
	Vocabulary map[string]int
	IDF        []float64
}

// NewTfidfVectorizer returns an unfitted vectorizer.
func NewTfidfVectorizer() *TfidfVectorizer {
	return &TfidfVectorizer{}
}

// Fit learns the vocabulary and idf weights from docs. Columns are assigned in
// lexicographic term order.
func (v *TfidfVectorizer) Fit(docs []string) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
}

// Fitted reports whether Fit has run.
func (v *TfidfVectorizer) Fitted() bool {
	return v != nil && v.Vocabulary != nil
}

// VocabularySize returns the number of learned terms.
func (v *TfidfVectorizer) VocabularySize() int {
	if v == nil {
		return 0
	}
	return len(v.IDF)
}

// TransformOne vectorizes a single document. Unknown terms are ignored; a document
// with no known terms yields the zero vector.
func (v *TfidfVectorizer) TransformOne(doc string) (Vector, error) {
	if !v.Fitted() {
		return Vector{}, ErrNotFitted
	}
	counts := make(map[int]float64)
	for _, tok := range Tokenize(doc) {
		if col, ok := v.Vocabulary[tok]; ok {
			counts[col]++
		}
	}
	vec := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for col := range counts {
		vec.Indices = append(vec.Indices, col)
	}
	sort.Ints(vec.Indices)
	for _, col := range vec.Indices {
		vec.Values = append(vec.Values, counts[col]*v.IDF[col])
	}
	utils.NormalizeL2(vec.Values)
	return vec, nil
}

// Transform vectorizes docs into a matrix with one row per document.
func (v *TfidfVectorizer) Transform(docs []string) (*Matrix, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	m := &Matrix{Data: make([]Vector, len(docs)), Cols: v.VocabularySize()}
	for i, doc := range docs {
		row, err := v.TransformOne(doc)
		if err != nil {
			return nil, err
		}
		m.Data[i] = row
	}
	return m, nil
}

// FitTransform fits on docs and returns their matrix.
func (v *TfidfVectorizer) FitTransform(docs []string) (*Matrix, error) {
	v.Fit(docs)
	return v.Transform(docs)
}
