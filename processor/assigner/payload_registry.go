package assigner

import "github.com/c360studio/semstreams/component"

func init() {
	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "submission",
		Category:    "received",
		Version:     "v1",
		Description: "Raw form submission with free-form field names",
		Factory:     func() any { return &SubmissionEvent{} },
	}); err != nil {
		panic("failed to register SubmissionEvent: " + err.Error())
	}

	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "submission",
		Category:    "assignment",
		Version:     "v1",
		Description: "Template assignment decision for a submission",
		Factory:     func() any { return &AssignmentDecision{} },
	}); err != nil {
		panic("failed to register AssignmentDecision: " + err.Error())
	}
}
