package auth

import (
	domain "github.com/example/realtime-chat-app/domain/chat"
)

// Service names registered in the service container.
const (
	ServiceSendOTP       = "send-otp"
	ServiceVerifyOTP     = "verify-otp"
	ServiceLookupUser    = "lookup-user"
	ServiceValidateToken = "validate-token"
)

// SendOTPRequest asks for a login code for a phone.
type SendOTPRequest struct {
	Phone string `json:"phone"`
}

// SendOTPResponse carries the generated code. A real SMS integration would
// not return it; the demo UI shows it to the user.
type SendOTPResponse struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// VerifyOTPRequest submits a code for verification.
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// VerifyOTPResponse carries the verified profile and an access token.
type VerifyOTPResponse struct {
	User        domain.Contact `json:"user"`
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
}

// LookupRequest asks for the profile behind a phone number.
type LookupRequest struct {
	Phone string `json:"phone"`
}

// LookupResponse is the profile, auto-created for unknown phones.
type LookupResponse struct {
	User domain.Contact `json:"user"`
}

// ValidateTokenRequest submits an access token for validation.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse reports the claims of a valid token.
type ValidateTokenResponse struct {
	Valid bool   `json:"valid"`
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
}
