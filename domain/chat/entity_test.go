package chat

import "testing"

func TestDeriveConversationKey(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want ConversationKey
	}{
		{
			name: "already ordered",
			a:    "111",
			b:    "222",
			want: "111:222",
		},
		{
			name: "reversed order yields same key",
			a:    "222",
			b:    "111",
			want: "111:222",
		},
		{
			name: "whitespace trimmed",
			a:    " 919937320320 ",
			b:    "918329446654",
			want: "918329446654:919937320320",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveConversationKey(tt.a, tt.b); got != tt.want {
				t.Errorf("DeriveConversationKey(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDeriveConversationKey_Symmetric(t *testing.T) {
	if DeriveConversationKey("111", "222") != DeriveConversationKey("222", "111") {
		t.Error("both participants must derive the same key")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{phone: "919937320320", want: "User 0320"},
		{phone: "1234", want: "User 1234"},
		{phone: "12", want: "User 12"},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.phone); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []MessageStatus{StatusSending, StatusSent, StatusDelivered, StatusRead} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	if ValidStatus("bogus") {
		t.Error(`ValidStatus("bogus") = true, want false`)
	}
}
