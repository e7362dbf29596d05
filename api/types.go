package api

// LoginRequest is the body of the login and register calls.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest = LoginRequest

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	// Access is the short-lived bearer token sent as "Authorization: Bearer <access>".
	Access string `json:"access"`

	// Refresh is the long-lived token exchanged for a new access token.
	// It is never rotated by a refresh.
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	UID                string `json:"uid"`
	Token              string `json:"token"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// Ack is the acknowledgement body of logout and password reset calls.
type Ack struct {
	Detail string `json:"detail,omitempty"`
}
