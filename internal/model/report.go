package model

// ClaimVerdict is one line of the prediction output
type ClaimVerdict struct {
	ID                int           `json:"id"`
	PredictedLabel    Label         `json:"predicted_label"`
	PredictedEvidence []SentenceRef `json:"predicted_evidence"`
}

// Report is the scoring summary printed by the evaluate commands
type Report struct {
	Claims        int     `json:"claims"`
	Strict        float64 `json:"fever_score"`
	LabelAccuracy float64 `json:"label_accuracy"`
	Precision     float64 `json:"evidence_precision"`
	Recall        float64 `json:"evidence_recall"`
	F1            float64 `json:"evidence_f1"`
}
