package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/realtime-chat-app/domain/chat"
)

// AuthPort is the interface other modules use to reach auth operations.
type AuthPort interface {
	SendOTP(ctx context.Context, phone string) (string, error)
	VerifyOTP(ctx context.Context, phone, otp string) (*VerifyOTPResponse, error)
	Lookup(ctx context.Context, phone string) (domain.Contact, error)
	ValidateToken(ctx context.Context, token string) (*ValidateTokenResponse, error)
}

// AuthAdapter implements AuthPort over the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates an AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) AuthPort {
	if container == nil {
		panic("auth: ServiceContainer is nil")
	}
	return &AuthAdapter{container: container}
}

// SendOTP requests a login code for a phone.
func (a *AuthAdapter) SendOTP(ctx context.Context, phone string) (string, error) {
	req := SendOTPRequest{Phone: phone}
	var resp SendOTPResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceSendOTP,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("failed to send otp: %w", err)
	}
	return resp.OTP, nil
}

// VerifyOTP submits a code and returns the profile plus access token.
func (a *AuthAdapter) VerifyOTP(ctx context.Context, phone, otp string) (*VerifyOTPResponse, error) {
	req := VerifyOTPRequest{Phone: phone, OTP: otp}
	var resp VerifyOTPResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceVerifyOTP,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to verify otp: %w", err)
	}
	return &resp, nil
}

// Lookup returns the profile behind a phone number.
func (a *AuthAdapter) Lookup(ctx context.Context, phone string) (domain.Contact, error) {
	req := LookupRequest{Phone: phone}
	var resp LookupResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceLookupUser,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Contact{}, fmt.Errorf("failed to lookup user: %w", err)
	}
	return resp.User, nil
}

// ValidateToken checks an access token.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*ValidateTokenResponse, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceValidateToken,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	return &resp, nil
}
