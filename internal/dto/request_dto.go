package dto

type LoginRequest struct {
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Password  string `json:"password"`
}

// Identifier is the email, or the telephone when no email was sent.
func (r LoginRequest) Identifier() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Telephone
}

type RegisterRequest struct {
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=6"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Telephone      *string `json:"telephone"`
	WhatsappNumber *string `json:"whatsappNumber"`
	Age            *int    `json:"age" binding:"omitempty,min=1,max=120"`
}

type StartTestRequest struct {
	SelectedLanguage string `json:"selectedLanguage" binding:"omitempty,langcode"`
}

// SaveStepRequest is one questionnaire step submission. StepData is kept
// as free-form JSON.
type SaveStepRequest struct {
	StepName         string         `json:"stepName"`
	StepData         map[string]any `json:"stepData"`
	StepNumber       *int           `json:"stepNumber"`
	Duration         *float64       `json:"duration"`
	SelectedLanguage string         `json:"selectedLanguage" binding:"omitempty,langcode"`
}

type CreateUserRequest struct {
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Telephone      *string `json:"telephone"`
	WhatsappNumber *string `json:"whatsappNumber"`
	Age            *int    `json:"age"`
}

// UpdateUserRequest only touches the fields that are sent.
type UpdateUserRequest struct {
	Email          *string `json:"email" binding:"omitempty,email"`
	Password       *string `json:"password"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Telephone      *string `json:"telephone"`
	WhatsappNumber *string `json:"whatsappNumber"`
	Age            *int    `json:"age"`
}

type PresenceRequest struct {
	IsPresent bool `json:"isPresent"`
}

type CreateStaffRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Telephone *string `json:"telephone"`
}

type UpdateStaffRequest struct {
	Email        *string `json:"email" binding:"omitempty,email"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Telephone    *string `json:"telephone"`
	IsSuperAdmin *bool   `json:"isSuperAdmin"`
}
