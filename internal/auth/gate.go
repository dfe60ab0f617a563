package auth

// Gate は設定されたスーパー管理者のメールアドレスとの一致を判定する。
// ストアにはアクセスしない。
type Gate struct {
	superadminEmail string
}

// NewGate はGateを生成する。superadminEmailが空の場合は誰も通過できない。
func NewGate(superadminEmail string) *Gate {
	return &Gate{superadminEmail: superadminEmail}
}

// IsSuperadmin はemailがスーパー管理者のメールアドレスと完全一致する場合にtrueを返す。
func (g *Gate) IsSuperadmin(email string) bool {
	if g.superadminEmail == "" || email == "" {
		return false
	}
	return email == g.superadminEmail
}
