package models

// QuestionRecord represents one harvested question, ready for export.
type QuestionRecord struct {
	NoteID        int       `json:"noteId"`             // import identifier, offset by the skip count
	SL            int       `json:"serialNumber"`       // strictly increasing, successful questions only
	Question      string    `json:"questionHtml"`       // sanitized; passage prepended when present
	Options       []*string `json:"options"`            // always 4 positions, nil for missing options
	CorrectAnswer int       `json:"correctAnswerIndex"` // 0 = not determined, 1-4 = option position
	Solution      string    `json:"solutionHtml"`
	Tags          []string  `json:"tags"` // subject tag (if resolved) then the common tag
}

// HasOption reports whether at least one option position is populated.
func (r *QuestionRecord) HasOption() bool {
	for _, o := range r.Options {
		if o != nil {
			return true
		}
	}
	return false
}
