package models

import "fmt"

// HistoryView is a user's records partitioned by variant.
type HistoryView struct {
	PregnancyRisk       []*Record `json:"pregnancyRisk"`
	FetalClassification []*Record `json:"fetalClassification"`
	Total               int       `json:"total"`
}

func NewHistoryView(c Collection) *HistoryView {
	view := &HistoryView{
		PregnancyRisk:       make([]*Record, 0),
		FetalClassification: make([]*Record, 0),
	}
	for _, r := range c {
		switch r.Type {
		case TypePregnancyRisk:
			view.PregnancyRisk = append(view.PregnancyRisk, r)
		case TypeFetalClassification:
			view.FetalClassification = append(view.FetalClassification, r)
		}
	}
	view.Total = len(c)
	return view
}

type CleanupSummary struct {
	Message        string `json:"message"`
	RemovedRecords int    `json:"removed_records"`
	RemovedFiles   int    `json:"removed_files"`
}

func (s *CleanupSummary) Add(other *CleanupSummary) {
	if other == nil {
		return
	}
	s.RemovedRecords += other.RemovedRecords
	s.RemovedFiles += other.RemovedFiles
}

func (s *CleanupSummary) Complete() *CleanupSummary {
	s.Message = fmt.Sprintf("Cleanup completed. Removed %d records and %d files.", s.RemovedRecords, s.RemovedFiles)
	return s
}

// StoredImage describes an uploaded image in a user's storage area.
type StoredImage struct {
	ImageFilename string `json:"image_filename"`
	ImagePath     string `json:"image_path"`
	Reused        bool   `json:"reused"`
}

// ArchivedRecord is a record evicted from the collection by the size cap.
type ArchivedRecord struct {
	Record    *Record   `json:"record"`
	EvictedAt Timestamp `json:"evicted_at"`
}
