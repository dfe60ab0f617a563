package auth

import "testing"

func TestGate_IsSuperadmin(t *testing.T) {
	g := NewGate("admin@example.com")

	tests := []struct {
		email string
		want  bool
	}{
		{"admin@example.com", true},
		{"Admin@example.com", false},
		{"admin@example.com ", false},
		{"other@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := g.IsSuperadmin(tt.email); got != tt.want {
			t.Errorf("IsSuperadmin(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

// TestGate_EmptyConfiguredEmail_RejectsEveryone は設定が空の場合に誰も通過できないことを検証する。
func TestGate_EmptyConfiguredEmail_RejectsEveryone(t *testing.T) {
	g := NewGate("")

	for _, email := range []string{"", "admin@example.com"} {
		if g.IsSuperadmin(email) {
			t.Errorf("IsSuperadmin(%q) = true with empty configured email", email)
		}
	}
}
