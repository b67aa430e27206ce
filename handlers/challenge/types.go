package challenge

// RiddleResponse is returned by GET /riddle. Once the team is complete the
// riddle text is omitted and Detail says so.
type RiddleResponse struct {
	RiddleText string `json:"riddle_text,omitempty"`
	Detail     string `json:"detail,omitempty"`
	IsComplete bool   `json:"is_complete"`
}

// SubmitRequest model for answer submission
type SubmitRequest struct {
	Answer string `json:"answer"`
}

// SubmitResponse is returned by POST /submit
type SubmitResponse struct {
	Detail     string `json:"detail"`
	IsComplete bool   `json:"is_complete"`
}
