package auth

import (
	"testing"
	"time"
)

func TestOTPService_SendAndVerify(t *testing.T) {
	s := NewOTPService()

	code, err := s.SendOTP("919937320320")
	if err != nil {
		t.Fatalf("SendOTP() error = %v", err)
	}
	if len(code) != 6 {
		t.Errorf("SendOTP() code length = %d, want 6", len(code))
	}

	user, err := s.Verify("919937320320", code)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.Name != "Ravi Kumar" {
		t.Errorf("user.Name = %q, want %q", user.Name, "Ravi Kumar")
	}
	if user.Phone != "919937320320" {
		t.Errorf("user.Phone = %q, want %q", user.Phone, "919937320320")
	}
}

func TestOTPService_VerifyWrongCode(t *testing.T) {
	s := NewOTPService()

	if _, err := s.SendOTP("919937320320"); err != nil {
		t.Fatalf("SendOTP() error = %v", err)
	}

	_, err := s.Verify("919937320320", "000000")
	if err != ErrInvalidOTP {
		t.Errorf("Verify() error = %v, want ErrInvalidOTP", err)
	}
}

func TestOTPService_CodeIsSingleUse(t *testing.T) {
	s := NewOTPService()

	code, err := s.SendOTP("919937320320")
	if err != nil {
		t.Fatalf("SendOTP() error = %v", err)
	}

	if _, err := s.Verify("919937320320", code); err != nil {
		t.Fatalf("first Verify() error = %v", err)
	}
	if _, err := s.Verify("919937320320", code); err != ErrInvalidOTP {
		t.Errorf("second Verify() error = %v, want ErrInvalidOTP", err)
	}
}

func TestOTPService_ExpiredCode(t *testing.T) {
	s := NewOTPService()

	now := time.Now()
	s.now = func() time.Time { return now }

	code, err := s.SendOTP("919937320320")
	if err != nil {
		t.Fatalf("SendOTP() error = %v", err)
	}

	// Move past the 5-minute window.
	s.now = func() time.Time { return now.Add(6 * time.Minute) }

	_, err = s.Verify("919937320320", code)
	if err != ErrExpiredOTP {
		t.Errorf("Verify() error = %v, want ErrExpiredOTP", err)
	}
}

func TestOTPService_UnknownPhoneGetsAccount(t *testing.T) {
	s := NewOTPService()

	code, err := s.SendOTP("911111112222")
	if err != nil {
		t.Fatalf("SendOTP() error = %v", err)
	}

	user, err := s.Verify("911111112222", code)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.Name != "User 2222" {
		t.Errorf("user.Name = %q, want %q", user.Name, "User 2222")
	}
}

func TestOTPService_SendOTPRequiresPhone(t *testing.T) {
	s := NewOTPService()

	if _, err := s.SendOTP("  "); err == nil {
		t.Error("SendOTP() should reject empty phone")
	}
}

func TestOTPService_Lookup(t *testing.T) {
	s := NewOTPService()

	tests := []struct {
		name       string
		phone      string
		wantName   string
		wantStatus string
	}{
		{
			name:       "seeded user",
			phone:      "919876543210",
			wantName:   "Priya Sharma",
			wantStatus: "online",
		},
		{
			name:       "unknown user auto-created",
			phone:      "917777778888",
			wantName:   "User 8888",
			wantStatus: "offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := s.Lookup(tt.phone)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if user.Name != tt.wantName {
				t.Errorf("user.Name = %q, want %q", user.Name, tt.wantName)
			}
			if user.Status != tt.wantStatus {
				t.Errorf("user.Status = %q, want %q", user.Status, tt.wantStatus)
			}
		})
	}

	// Second lookup of an auto-created user returns the same record.
	again, err := s.Lookup("917777778888")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if again.Name != "User 8888" {
		t.Errorf("repeat Lookup() name = %q, want %q", again.Name, "User 8888")
	}
}
