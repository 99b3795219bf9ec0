package dto

type ImportDirRequest struct {
	Dir string `json:"dir"`
}

type ImportFileOutcome struct {
	File      string `json:"file"`
	Status    string `json:"status"`
	Action    string `json:"action,omitempty"`
	SessionId string `json:"session_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Parser    string `json:"parser,omitempty"`
}

type ImportReportFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

type ImportReport struct {
	SourceDirectory   string                `json:"source_directory"`
	TotalFiles        int                   `json:"total_files"`
	Imported          int                   `json:"imported"`
	Updated           int                   `json:"updated"`
	Skipped           int                   `json:"skipped"`
	Failed            int                   `json:"failed"`
	DuplicateSuspects int                   `json:"duplicate_suspects"`
	Failures          []ImportReportFailure `json:"failures"`
	Outcomes          []ImportFileOutcome   `json:"outcomes"`
}

// ImportMessage is the envelope on the import outcome topic. A run publishes one
// "outcome" message per file, then a single "complete" message.
type ImportMessage struct {
	RunId           string             `json:"run_id"`
	Kind            string             `json:"kind"`
	SourceDirectory string             `json:"source_directory,omitempty"`
	TotalFiles      int                `json:"total_files,omitempty"`
	Outcome         *ImportFileOutcome `json:"outcome,omitempty"`
}
