package caserecord

// Summary is one row of the folder/list screen's case list. The list is
// kept in sync with a record's status and remarks whenever those change.
type Summary struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Status  Status `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}
