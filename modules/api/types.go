package api

// SendOTPRequest is the body of POST /api/v1/auth/send-otp.
type SendOTPRequest struct {
	Phone string `json:"phone"`
}

// VerifyOTPRequest is the body of POST /api/v1/auth/verify.
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// LookupRequest is the body of POST /api/v1/users/lookup.
type LookupRequest struct {
	Phone string `json:"phone"`
}

// SendMessageRequest is the body of POST /api/v1/messages/send. The field
// names match the web client's wire format.
type SendMessageRequest struct {
	FromPhone   string `json:"from_phone"`
	ToPhone     string `json:"to_phone"`
	MessageText string `json:"message_text"`
	SenderName  string `json:"sender_name"`
}

// MessagesBetweenRequest is the body of POST /api/v1/messages/between.
type MessagesBetweenRequest struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

// StatusUpdateRequest is the body of PUT /api/v1/messages/status. The
// messageId casing matches what the web client sends.
type StatusUpdateRequest struct {
	MessageID string `json:"messageId"`
	MetaMsgID string `json:"meta_msg_id"`
	Status    string `json:"status"`
}
