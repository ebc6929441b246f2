package consensus

import (
	"fmt"

	"github.com/ppiankov/quizguard/internal/util"
)

// SimilarityFunc scores how alike two model outputs are, in [0, 1]
type SimilarityFunc func(a, b string) float64

// TokenJaccard compares the sets of tokens in a and b
func TokenJaccard(a, b string) float64 {
	return util.Jaccard(util.NewTokenSet(util.Tokenize(a)), util.NewTokenSet(util.Tokenize(b)))
}

// TokenCosine compares the token frequency vectors of a and b
func TokenCosine(a, b string) float64 {
	return util.Cosine(util.Tokenize(a), util.Tokenize(b))
}

// SimilarityByName resolves a configured metric name
func SimilarityByName(name string) (SimilarityFunc, error) {
	switch name {
	case "", "jaccard":
		return TokenJaccard, nil
	case "cosine":
		return TokenCosine, nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q (want jaccard or cosine)", name)
	}
}
