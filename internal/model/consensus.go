package model

// ModelOutput is the text one model produced for a prompt
type ModelOutput struct {
	ModelID string `json:"model_id"`
	Text    string `json:"text"`
}

// PairSimilarity is the similarity of two model outputs
type PairSimilarity struct {
	Model1     string  `json:"model_1"`
	Model2     string  `json:"model_2"`
	Similarity float64 `json:"similarity"`
}

// ConsensusBatch records the reconciliation of several model runs for one prompt.
// Merged is empty unless agreement reached the configured minimum.
type ConsensusBatch struct {
	PromptHash     string           `json:"prompt_hash"`
	ModelOutputs   []ModelOutput    `json:"model_outputs"`
	Pairwise       []PairSimilarity `json:"pairwise"`
	AgreementScore float64          `json:"agreement_score"`
	Merged         string           `json:"merged,omitempty"`
	MergedModel    string           `json:"merged_model,omitempty"`
}
