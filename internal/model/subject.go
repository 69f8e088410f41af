package model

// Subject is a top-level study area (Physics, Chemistry, ...).
type Subject struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameBn string `json:"nameBn"`
	Icon   string `json:"icon,omitempty"`
}

// Topic is a sub-area within a subject.
type Topic struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId"`
	Name      string `json:"name"`
	NameBn    string `json:"nameBn"`
}
