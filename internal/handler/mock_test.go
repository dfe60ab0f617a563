package handler

import (
	"context"
	"time"

	"github.com/pushgo/depotman/internal/deleteflow"
	"github.com/pushgo/depotman/internal/depot"
	"github.com/pushgo/depotman/internal/model"
)

// --- モック定義 ---

type mockDepotService struct {
	listFn   func(ctx context.Context) ([]model.Depot, error)
	createFn func(ctx context.Context, fields model.DepotFields) (model.Depot, error)
	updateFn func(ctx context.Context, id string, fields model.DepotFields) (model.Depot, error)
}

func (m *mockDepotService) List(ctx context.Context) ([]model.Depot, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockDepotService) Create(ctx context.Context, fields model.DepotFields) (model.Depot, error) {
	if m.createFn != nil {
		return m.createFn(ctx, fields)
	}
	return fields.WithID("depot-new"), nil
}

func (m *mockDepotService) Update(ctx context.Context, id string, fields model.DepotFields) (model.Depot, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return fields.WithID(id), nil
}

type mockStatusReader struct {
	notice *depot.Notice
}

func (m *mockStatusReader) Current() (depot.Notice, bool) {
	if m.notice == nil {
		return depot.Notice{}, false
	}
	return *m.notice, true
}

type mockDeleteFlow struct {
	requestFn func(depotID string) (deleteflow.PendingDelete, error)
	confirmFn func(ctx context.Context, pendingID, passkey string) error
	cancelled []string
}

func (m *mockDeleteFlow) Request(depotID string) (deleteflow.PendingDelete, error) {
	if m.requestFn != nil {
		return m.requestFn(depotID)
	}
	return deleteflow.PendingDelete{ID: "pending-1", DepotID: depotID, RequestedAt: time.Now()}, nil
}

func (m *mockDeleteFlow) Confirm(ctx context.Context, pendingID, passkey string) error {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, pendingID, passkey)
	}
	return nil
}

func (m *mockDeleteFlow) Cancel(pendingID string) {
	m.cancelled = append(m.cancelled, pendingID)
}

type mockAuthService struct {
	requestMagicLinkFn func(ctx context.Context, email string) error
	handleCallbackFn   func(ctx context.Context, tokenHash, linkType string) (*model.Session, error)
	logoutFn           func(ctx context.Context, sessionID string)
	currentSessionFn   func(sessionID string) (*model.Session, bool)
}

func (m *mockAuthService) RequestMagicLink(ctx context.Context, email string) error {
	if m.requestMagicLinkFn != nil {
		return m.requestMagicLinkFn(ctx, email)
	}
	return nil
}

func (m *mockAuthService) HandleCallback(ctx context.Context, tokenHash, linkType string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, tokenHash, linkType)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) {
	if m.logoutFn != nil {
		m.logoutFn(ctx, sessionID)
	}
}

func (m *mockAuthService) CurrentSession(sessionID string) (*model.Session, bool) {
	if m.currentSessionFn != nil {
		return m.currentSessionFn(sessionID)
	}
	return nil, false
}

type mockPasskeyUpdater struct {
	updateFn func(ctx context.Context, newPasskey, callerEmail string) error
}

func (m *mockPasskeyUpdater) Update(ctx context.Context, newPasskey, callerEmail string) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, newPasskey, callerEmail)
	}
	return nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// sampleDepots はテスト用のデポ一覧を返す。
func sampleDepots() []model.Depot {
	return []model.Depot{
		{ID: "d1", Name: "Patna_Chanakyavihar_D", State: model.RegionBihar, District: "Patna", TLName: "Amit"},
		{ID: "d2", Name: "Dhanbad_Tilabani_D", State: model.RegionJharkhand, District: "Dhanbad"},
		{ID: "d3", Name: "Ranchi_Main_D", State: model.RegionJharkhand, District: "Ranchi", TLName: "Priya"},
	}
}
