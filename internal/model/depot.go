// Package model はドメインモデルを定義する。
package model

import "time"

// Region はデポが属する州（地域）を表す。
type Region string

const (
	// RegionBihar はビハール州。
	RegionBihar Region = "Bihar"
	// RegionJharkhand はジャールカンド州。
	RegionJharkhand Region = "Jharkhand"
	// RegionAll は絞り込みなしを表すフィルタ値。デポの属性としては使わない。
	RegionAll Region = "All"
)

// Regions はデポに設定可能な州の一覧。表示順を兼ねる。
var Regions = []Region{RegionBihar, RegionJharkhand}

// Valid はデポの属性として有効な州かどうかを返す。
// RegionAllはフィルタ専用のため無効として扱う。
func (r Region) Valid() bool {
	switch r {
	case RegionBihar, RegionJharkhand:
		return true
	default:
		return false
	}
}

// Depot は物流拠点（デポ）を表す。
// IDは作成時に1回だけ採番され、以降変更されない。
// オプション項目は未入力の場合も空文字列で保持し、nilにはならない。
type Depot struct {
	ID       string
	Name     string
	State    Region
	District string
	TLName   string // 担当チームリーダー名
	TLNumber string // チームリーダーの連絡先（形式は検証しない）
	Address  string
	MapLink  string // 地図URL（形式は検証しない）
}

// Fields はIDを除いたデポ属性を返す。
func (d Depot) Fields() DepotFields {
	return DepotFields{
		Name:     d.Name,
		State:    d.State,
		District: d.District,
		TLName:   d.TLName,
		TLNumber: d.TLNumber,
		Address:  d.Address,
		MapLink:  d.MapLink,
	}
}

// DepotFields は作成・更新時に受け付けるデポ属性（IDを除く）。
type DepotFields struct {
	Name     string
	State    Region
	District string
	TLName   string
	TLNumber string
	Address  string
	MapLink  string
}

// WithID は指定IDを付与したDepotを返す。
func (f DepotFields) WithID(id string) Depot {
	return Depot{
		ID:       id,
		Name:     f.Name,
		State:    f.State,
		District: f.District,
		TLName:   f.TLName,
		TLNumber: f.TLNumber,
		Address:  f.Address,
		MapLink:  f.MapLink,
	}
}

// DepotStats はデポ一覧の集計値を表す。
type DepotStats struct {
	Total     int
	Bihar     int
	Jharkhand int
}

// PasskeySettingKey は削除用パスキーを保持するapp_settingsのキー。
const PasskeySettingKey = "delete_passkey"

// AppSetting はapp_settingsテーブルの1行を表す。
type AppSetting struct {
	Key   string
	Value string
}

// Session はスーパー管理者のログインセッションを表す。
// 外部認証プロバイダーが発行したアクセストークンを保持し、ローカルには永続化しない。
type Session struct {
	ID          string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
