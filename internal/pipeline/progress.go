package pipeline

// Progress steps reported during generation
const (
	StepStarted  = "started"
	StepExtract  = "extract"
	StepEnhance  = "enhance"
	StepContent  = "content"
	StepComplete = "complete"
	StepError    = "error"
	StepUpdate   = "update"
)

// User-facing progress messages
const (
	MessageAnalyzing = "Analyzing conversation to extract resume information..."
	MessageEnhancing = "Enhancing and formatting resume data..."
	MessageComplete  = "Resume generated successfully! You can now preview and download your PDF resume."
	MessageUpdated   = "Resume updated successfully!"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step       string `json:"step"`
	Message    string `json:"message,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	Content    any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// emit calls the progress callback if configured
func (cb ProgressCallback) emit(step, documentID, message string, content any) {
	if cb != nil {
		cb(ProgressEvent{
			Step:       step,
			Message:    message,
			DocumentID: documentID,
			Content:    content,
		})
	}
}
