package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Module provides the fake OTP login and user lookup services.
type Module struct {
	otp *OTPService
	jwt *JWTManager
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates an auth module. An empty jwtSecret keeps the default
// development key.
func NewModule(jwtSecret string) *Module {
	config := DefaultJWTConfig()
	if jwtSecret != "" {
		config.SecretKey = jwtSecret
	}
	return &Module{
		otp: NewOTPService(),
		jwt: NewJWTManager(config),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "auth"
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[auth] Module started (fake OTP mode)")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceSendOTP,
		json.Unmarshal,
		json.Marshal,
		m.handleSendOTP,
	); err != nil {
		return fmt.Errorf("failed to register send-otp service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceVerifyOTP,
		json.Unmarshal,
		json.Marshal,
		m.handleVerifyOTP,
	); err != nil {
		return fmt.Errorf("failed to register verify-otp service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceLookupUser,
		json.Unmarshal,
		json.Marshal,
		m.handleLookup,
	); err != nil {
		return fmt.Errorf("failed to register lookup-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceValidateToken,
		json.Unmarshal,
		json.Marshal,
		m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	log.Printf("[auth] Registered services: %s, %s, %s, %s",
		ServiceSendOTP, ServiceVerifyOTP, ServiceLookupUser, ServiceValidateToken)
	return nil
}

func (m *Module) handleSendOTP(_ context.Context, req SendOTPRequest, _ *mono.Msg) (SendOTPResponse, error) {
	code, err := m.otp.SendOTP(req.Phone)
	if err != nil {
		return SendOTPResponse{}, err
	}
	return SendOTPResponse{Phone: req.Phone, OTP: code}, nil
}

func (m *Module) handleVerifyOTP(_ context.Context, req VerifyOTPRequest, _ *mono.Msg) (VerifyOTPResponse, error) {
	user, err := m.otp.Verify(req.Phone, req.OTP)
	if err != nil {
		return VerifyOTPResponse{}, err
	}

	token, err := m.jwt.GenerateAccessToken(user.Phone, user.Name)
	if err != nil {
		return VerifyOTPResponse{}, fmt.Errorf("failed to generate token: %w", err)
	}

	return VerifyOTPResponse{
		User:        user,
		AccessToken: token,
		ExpiresIn:   m.jwt.AccessTokenDuration(),
	}, nil
}

func (m *Module) handleLookup(_ context.Context, req LookupRequest, _ *mono.Msg) (LookupResponse, error) {
	user, err := m.otp.Lookup(req.Phone)
	if err != nil {
		return LookupResponse{}, err
	}
	return LookupResponse{User: user}, nil
}

func (m *Module) handleValidateToken(_ context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.jwt.ValidateToken(req.Token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) || errors.Is(err, ErrInvalidToken) {
			return ValidateTokenResponse{Valid: false}, nil
		}
		return ValidateTokenResponse{}, err
	}
	return ValidateTokenResponse{Valid: true, Phone: claims.Phone, Name: claims.Name}, nil
}
