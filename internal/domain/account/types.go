// Package account defines the registration, login verification and deletion
// payloads exchanged with the backend, plus the local gating flags.
package account

import "strings"

// RegistrationForm is the submitted registration form. Field names match the
// form inputs; validate tags are enforced before any backend call.
type RegistrationForm struct {
	NotificationEmail string `json:"notificationEmail" label:"Notification email" validate:"required,email,max=254,mailhost"`
	GitName           string `json:"gitName"           label:"Git name"           validate:"required,max=100"`
	Hour              string `json:"hour"              label:"Hour"               validate:"required,notify_hour"`
	Minute            string `json:"minute"            label:"Minute"             validate:"required,notify_minute"`
}

// NewRegistrationForm returns a form pre-filled with the signed-in email and
// the default notification time.
func NewRegistrationForm(email string) RegistrationForm {
	return RegistrationForm{
		NotificationEmail: email,
		Hour:              DefaultNotifyTime.HourString(),
		Minute:            DefaultNotifyTime.MinuteString(),
	}
}

// Normalize trims surrounding whitespace from the free-text fields.
func (f *RegistrationForm) Normalize() {
	f.NotificationEmail = strings.TrimSpace(f.NotificationEmail)
	f.GitName = strings.TrimSpace(f.GitName)
	f.Hour = strings.TrimSpace(f.Hour)
	f.Minute = strings.TrimSpace(f.Minute)
}

// Time combines the hour and minute selections.
func (f RegistrationForm) Time() (NotifyTime, error) {
	return ParseNotifyTime(f.Hour + ":" + f.Minute)
}

// RegisterRequest is the body posted to the backend registration endpoint.
type RegisterRequest struct {
	GoogleID          string `json:"googleId"`
	NotificationEmail string `json:"notificationEmail"`
	GitName           string `json:"gitName"`
	Time              string `json:"time"`
}

// NewRegisterRequest binds a validated form to the signed-in user's uid.
func NewRegisterRequest(uid string, f RegistrationForm, t NotifyTime) RegisterRequest {
	return RegisterRequest{
		GoogleID:          uid,
		NotificationEmail: f.NotificationEmail,
		GitName:           f.GitName,
		Time:              t.String(),
	}
}

// RegisterResult is the backend's answer to a registration attempt.
// Errors maps form field names to messages; general errors use the empty key.
type RegisterResult struct {
	Success bool
	Message string
	Errors  map[string]string
}

// VerifyResult is the backend's answer to a token verification.
type VerifyResult struct {
	Success   bool `json:"success"`
	IsNewUser bool `json:"isNewUser"`
}

// DeleteRequest is the body of the backend delete-user call.
type DeleteRequest struct {
	UID string `json:"uid"`
}

// DeleteResult is the backend's answer to a delete-user call.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
