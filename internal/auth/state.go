package auth

// SessionState はスーパー管理者画面のログイン状態。
type SessionState int

const (
	// StateAnonymous は未ログイン。
	StateAnonymous SessionState = iota
	// StateAuthenticatedUnverified は外部セッションを受け取り、ゲート判定前。
	StateAuthenticatedUnverified
	// StateAuthenticatedAuthorized はゲートを通過したスーパー管理者。
	StateAuthenticatedAuthorized
	// StateAuthenticatedRejected はゲートで拒否された。外部セッションは直ちにサインアウトする。
	StateAuthenticatedRejected
)

// String は状態名を返す。
func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticatedUnverified:
		return "authenticated_unverified"
	case StateAuthenticatedAuthorized:
		return "authenticated_authorized"
	case StateAuthenticatedRejected:
		return "authenticated_rejected"
	default:
		return "unknown"
	}
}

// SessionEvent は状態遷移を引き起こすイベント。
type SessionEvent int

const (
	// EventSessionReceived はメールアドレス付きの外部セッションを受け取った。
	EventSessionReceived SessionEvent = iota
	// EventGateAccepted はゲートがスーパー管理者と判定した。
	EventGateAccepted
	// EventGateRejected はゲートがスーパー管理者ではないと判定した。
	EventGateRejected
	// EventSignOut はサインアウトした。
	EventSignOut
)

// Next はイベントを適用した次の状態を返す。
// 定義されていない遷移の場合は現在の状態とfalseを返す。
// サインアウトはどの状態からでも未ログインに戻る。
func (s SessionState) Next(e SessionEvent) (SessionState, bool) {
	if e == EventSignOut {
		return StateAnonymous, true
	}

	switch s {
	case StateAnonymous:
		if e == EventSessionReceived {
			return StateAuthenticatedUnverified, true
		}
	case StateAuthenticatedUnverified:
		switch e {
		case EventGateAccepted:
			return StateAuthenticatedAuthorized, true
		case EventGateRejected:
			return StateAuthenticatedRejected, true
		}
	}
	return s, false
}
