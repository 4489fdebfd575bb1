package models

// RegistrationResponse is returned for both registration variants. Action
// tells the caller whether a record was created or an existing membership was
// found; the message is already phrased for display.
type RegistrationResponse struct {
	MemberNumber string `json:"member_number"`
	Action       string `json:"action"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	Attempts     int    `json:"attempts,omitempty"`

	// TempPassword is present only on administrator-created memberships, for
	// secure hand-off. It is never persisted or logged.
	TempPassword string `json:"temp_password,omitempty"`
}
