package dto

import "github.com/lshigami/orientation-event/internal/orientation"

// TestStatusDTO is the latest test of a user with its step progress.
type TestStatusDTO struct {
	orientation.TestView
	CompletedSteps    []string `json:"completedSteps"`
	AllStepsCompleted bool     `json:"allStepsCompleted"`
}

type ReportUserDTO struct {
	ID        uint    `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     string  `json:"email"`
	Age       *int    `json:"age"`
	Telephone *string `json:"telephone"`
}

// ReportDTO is only produced for tests with every step completed.
type ReportDTO struct {
	orientation.TestView
	User ReportUserDTO `json:"user"`
}

// StartResult carries the test returned by the start endpoint.
type StartResult struct {
	Test    orientation.TestView
	Created bool
}
