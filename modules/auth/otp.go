package auth

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	domain "github.com/example/realtime-chat-app/domain/chat"
)

var (
	// ErrInvalidOTP is returned when the code does not match.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrExpiredOTP is returned when the code matched but is too old.
	ErrExpiredOTP = errors.New("otp has expired")
)

// otpTTL is how long a sent code stays valid.
const otpTTL = 5 * time.Minute

type otpRecord struct {
	code      string
	expiresAt time.Time
}

// OTPService implements the fake OTP login: codes are generated and logged
// instead of sent over SMS, and unknown phones get an account on first
// contact. Everything lives in memory; this is demo-mode auth, not a real
// login system.
type OTPService struct {
	mu    sync.Mutex
	users map[string]domain.Contact
	codes map[string]otpRecord
	now   func() time.Time
}

// NewOTPService creates the service with the seeded demo accounts.
func NewOTPService() *OTPService {
	s := &OTPService{
		users: make(map[string]domain.Contact),
		codes: make(map[string]otpRecord),
		now:   time.Now,
	}
	for phone, name := range map[string]string{
		"919937320320": "Ravi Kumar",
		"918329446654": "Business Account",
		"919876543210": "Priya Sharma",
		"919123456789": "Amit Singh",
		"919988776655": "Sneha Patel",
	} {
		s.users[phone] = domain.Contact{Phone: phone, Name: name, Status: "online"}
	}
	return s
}

// SendOTP issues a fresh 6-digit code for a phone, creating the account if
// it does not exist yet. The code is returned to the caller so the demo UI
// can display it.
func (s *OTPService) SendOTP(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("phone is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[phone]; !ok {
		s.users[phone] = domain.Contact{
			Phone:  phone,
			Name:   domain.DisplayName(phone),
			Status: "online",
		}
	}

	code := fmt.Sprintf("%06d", 100000+rand.IntN(900000))
	s.codes[phone] = otpRecord{code: code, expiresAt: s.now().Add(otpTTL)}

	// In a real deployment this would go out via an SMS gateway.
	log.Printf("[auth] OTP for %s: %s", phone, code)
	return code, nil
}

// Verify checks a code for a phone. Codes are single-use: a successful
// verification consumes the code.
func (s *OTPService) Verify(phone, code string) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.codes[phone]
	if !ok || rec.code != code {
		return domain.Contact{}, ErrInvalidOTP
	}
	if s.now().After(rec.expiresAt) {
		delete(s.codes, phone)
		return domain.Contact{}, ErrExpiredOTP
	}
	delete(s.codes, phone)

	return s.users[phone], nil
}

// Lookup returns the profile for a phone, creating a placeholder account
// for unknown numbers so the UI always has a name to show.
func (s *OTPService) Lookup(phone string) (domain.Contact, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.Contact{}, fmt.Errorf("phone is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[phone]; ok {
		return user, nil
	}
	user := domain.Contact{
		Phone:  phone,
		Name:   domain.DisplayName(phone),
		Status: "offline",
	}
	s.users[phone] = user
	return user, nil
}
