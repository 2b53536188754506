package ingest

import "darkroom/internal/domain/models"

// RecordResult captures the decisions made for a single imported record
// so a batch run is auditable after the fact.
type RecordResult struct {
	ExternalID int64             `json:"external_id"`
	Title      string            `json:"title"`
	Slug       string            `json:"slug,omitempty"`
	PostType   models.PostType   `json:"post_type,omitempty"`
	CategoryID int64             `json:"category_id,omitempty"`
	Status     models.PostStatus `json:"status,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Report summarizes one ingestion run.
type Report struct {
	Processed int            `json:"processed"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Records   []RecordResult `json:"records"`
}

func (r *Report) add(res RecordResult) {
	r.Processed++
	if res.Error == "" {
		r.Succeeded++
	} else {
		r.Failed++
	}
	r.Records = append(r.Records, res)
}
