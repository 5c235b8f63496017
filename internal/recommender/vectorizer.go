package recommender

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/offbeatoasis/oasis/pkg/models"
)

// tokenPattern keeps runs of at least two word characters, mirroring the
// vocabulary the original feature pipeline learned.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_]+`)

func tokenize(text string) []string {
	text = norm.NFKC.String(strings.ToLower(text))
	raw := tokenPattern.FindAllString(text, -1)

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// FeatureSpace is the fitted, immutable vocabulary handle. The location
// matrix and every query vector must be produced through the same
// FeatureSpace or their dimensions are incompatible.
type FeatureSpace struct {
	vocabulary map[string]int
	idf        []float64

	// min-max parameters for the appended numeric columns, empty when
	// the space was fitted without counts
	countMin   []float64
	countRange []float64
}

// Dims returns the width of every vector produced by this space.
func (s *FeatureSpace) Dims() int {
	return len(s.idf) + len(s.countMin)
}

// NumericDims returns how many scaled count columns follow the term
// columns.
func (s *FeatureSpace) NumericDims() int {
	return len(s.countMin)
}

// VocabularySize returns the number of learned terms.
func (s *FeatureSpace) VocabularySize() int {
	return len(s.vocabulary)
}

// LocationFeatures pairs the fitted space with the feature matrix: one
// row per location, in catalog order.
type LocationFeatures struct {
	Space  *FeatureSpace
	Matrix *mat.Dense
}

func combinedFeatures(loc models.Location) string {
	return loc.Category + " " + loc.State + " " + loc.Activities + " " + loc.Places
}

// FitLocationFeatures learns a TF-IDF weighted term space over the
// concatenated category, state, activities and places fields of the whole
// catalog and vectorizes every location. Missing text fields contribute
// nothing; they never exclude a location. When includeCounts is set, the
// activity and place counts are each min-max scaled to [0,1] and appended
// after the term columns.
func FitLocationFeatures(locations []models.Location, includeCounts bool) *LocationFeatures {
	docs := make([][]string, len(locations))
	docFreq := make(map[string]int)
	for i, loc := range locations {
		docs[i] = tokenize(combinedFeatures(loc))
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	// Sorted vocabulary keeps column order deterministic across runs.
	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	space := &FeatureSpace{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(locations))
	for i, term := range terms {
		space.vocabulary[term] = i
		space.idf[i] = smoothIDF(n, float64(docFreq[term]))
	}

	if includeCounts {
		space.fitCountScaling(locations)
	}

	if len(locations) == 0 || space.Dims() == 0 {
		return &LocationFeatures{Space: space}
	}

	matrix := mat.NewDense(len(locations), space.Dims(), nil)
	for i, loc := range locations {
		row := space.termVector(docs[i])
		if includeCounts {
			row = append(row, space.scaleCounts(loc.ActivityCount, loc.PlaceCount)...)
		}
		matrix.SetRow(i, row)
	}

	return &LocationFeatures{Space: space, Matrix: matrix}
}

// EncodePreferences projects a query into the fitted space: the category,
// state and optional user metadata are concatenated into one synthetic
// document and transformed with the vocabulary learned at fit time. When
// the space carries numeric columns the query gets the constant [1, 1]
// placeholder, maximal preference strength on both count axes.
func (s *FeatureSpace) EncodePreferences(category, state string, user *models.User) []float64 {
	parts := []string{category, state}
	if user != nil {
		parts = append(parts, user.Occupation, user.LocationType)
	}

	vec := s.termVector(tokenize(strings.Join(parts, " ")))
	for i := 0; i < s.NumericDims(); i++ {
		vec = append(vec, 1.0)
	}
	return vec
}

// termVector builds the L2-normalized TF-IDF sub-vector for one token
// stream. Tokens outside the fitted vocabulary are ignored.
func (s *FeatureSpace) termVector(tokens []string) []float64 {
	vec := make([]float64, len(s.idf))
	for _, tok := range tokens {
		if idx, ok := s.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	for i := range vec {
		vec[i] *= s.idf[i]
	}

	if nrm := floats.Norm(vec, 2); nrm > 0 {
		floats.Scale(1/nrm, vec)
	}
	return vec
}

func (s *FeatureSpace) fitCountScaling(locations []models.Location) {
	s.countMin = make([]float64, 2)
	s.countRange = make([]float64, 2)
	if len(locations) == 0 {
		return
	}

	min := []float64{locations[0].ActivityCount, locations[0].PlaceCount}
	max := []float64{locations[0].ActivityCount, locations[0].PlaceCount}
	for _, loc := range locations[1:] {
		counts := [2]float64{loc.ActivityCount, loc.PlaceCount}
		for j, v := range counts {
			if v < min[j] {
				min[j] = v
			}
			if v > max[j] {
				max[j] = v
			}
		}
	}
	for j := range min {
		s.countMin[j] = min[j]
		s.countRange[j] = max[j] - min[j]
	}
}

func (s *FeatureSpace) scaleCounts(activityCount, placeCount float64) []float64 {
	scaled := make([]float64, 2)
	for j, v := range [2]float64{activityCount, placeCount} {
		if s.countRange[j] > 0 {
			scaled[j] = (v - s.countMin[j]) / s.countRange[j]
		}
	}
	return scaled
}

// smoothIDF is ln((1+n)/(1+df)) + 1; the smoothing keeps terms that occur
// in every document from dropping out entirely.
func smoothIDF(docCount, docFreq float64) float64 {
	return math.Log((1+docCount)/(1+docFreq)) + 1
}

// cosineSimilarity treats any zero-magnitude operand as similarity 0
// rather than dividing by zero.
func cosineSimilarity(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
