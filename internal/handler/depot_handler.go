package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pushgo/depotman/internal/depot"
	"github.com/pushgo/depotman/internal/model"
)

// DepotServiceInterface はデポハンドラーが必要とするサービスインターフェース。
type DepotServiceInterface interface {
	// List は全デポを返す。取得に失敗した場合は直前のスナップショットとエラーを返す。
	List(ctx context.Context) ([]model.Depot, error)
	Create(ctx context.Context, fields model.DepotFields) (model.Depot, error)
	Update(ctx context.Context, id string, fields model.DepotFields) (model.Depot, error)
}

// StatusReader は現在のステータス通知を返す。
type StatusReader interface {
	Current() (depot.Notice, bool)
}

// DepotHandler はデポ管理のHTTPハンドラー。
type DepotHandler struct {
	service DepotServiceInterface
	status  StatusReader
}

// NewDepotHandler はDepotHandlerを生成する。
func NewDepotHandler(service DepotServiceInterface, status StatusReader) *DepotHandler {
	return &DepotHandler{
		service: service,
		status:  status,
	}
}

// depotRequest はデポ作成・更新リクエストのボディ。
type depotRequest struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	District string `json:"district"`
	TLName   string `json:"tlName"`
	TLNumber string `json:"tlNumber"`
	Address  string `json:"address"`
	MapLink  string `json:"mapLink"`
}

// depotResponse はデポ情報のAPIレスポンス。
type depotResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	District string `json:"district"`
	TLName   string `json:"tlName"`
	TLNumber string `json:"tlNumber"`
	Address  string `json:"address"`
	MapLink  string `json:"mapLink"`
}

// statsResponse はデポ集計値のAPIレスポンス。
type statsResponse struct {
	Total     int `json:"total"`
	Bihar     int `json:"bihar"`
	Jharkhand int `json:"jharkhand"`
}

// noticeResponse はステータス通知のAPIレスポンス。
type noticeResponse struct {
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	PostedAt time.Time `json:"postedAt"`
}

// listDepotsResponse はデポ一覧のAPIレスポンス。
// statsは絞り込み前の全件に対する集計。staleは取得に失敗して前回の一覧を返したことを示す。
type listDepotsResponse struct {
	Depots []depotResponse `json:"depots"`
	Stats  statsResponse   `json:"stats"`
	Status *noticeResponse `json:"status"`
	Stale  bool            `json:"stale"`
}

// statusResponse は現在のステータス通知のAPIレスポンス。
type statusResponse struct {
	Status *noticeResponse `json:"status"`
}

// ListDepots はデポ一覧を検索語と州で絞り込んで返す。
// GET /api/depots?q=&state=
func (h *DepotHandler) ListDepots(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	region := model.Region(r.URL.Query().Get("state"))
	if region == "" {
		region = model.RegionAll
	}
	if region != model.RegionAll && !region.Valid() {
		handleServiceError(w, model.NewInvalidInputError("Unknown state filter."))
		return
	}

	depots, err := h.service.List(r.Context())
	stale := false
	if err != nil {
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeStoreUnavailable {
			handleServiceError(w, err)
			return
		}
		// 取得失敗時は前回の一覧と通知をそのまま返す
		stale = true
	}

	filtered := depot.Filter(depots, search, region)
	resp := listDepotsResponse{
		Depots: make([]depotResponse, 0, len(filtered)),
		Stats:  toStatsResponse(depot.Aggregate(depots)),
		Status: h.currentNotice(),
		Stale:  stale,
	}
	for _, d := range filtered {
		resp.Depots = append(resp.Depots, toDepotResponse(d))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateDepot はデポを作成する。
// POST /api/depots
func (h *DepotHandler) CreateDepot(w http.ResponseWriter, r *http.Request) {
	var req depotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), req.toFields())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDepotResponse(created))
}

// UpdateDepot は指定IDのデポを上書き更新する。
// PUT /api/depots/{id}
func (h *DepotHandler) UpdateDepot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req depotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, req.toFields())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDepotResponse(updated))
}

// GetStatus は現在のステータス通知を返す。通知がない場合はstatusがnullになる。
// GET /api/status
func (h *DepotHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: h.currentNotice()})
}

func (h *DepotHandler) currentNotice() *noticeResponse {
	n, ok := h.status.Current()
	if !ok {
		return nil
	}
	return &noticeResponse{
		Kind:     string(n.Kind),
		Message:  n.Message,
		PostedAt: n.PostedAt,
	}
}

// --- ヘルパー関数 ---

func (req depotRequest) toFields() model.DepotFields {
	return model.DepotFields{
		Name:     req.Name,
		State:    model.Region(req.State),
		District: req.District,
		TLName:   req.TLName,
		TLNumber: req.TLNumber,
		Address:  req.Address,
		MapLink:  req.MapLink,
	}
}

func toDepotResponse(d model.Depot) depotResponse {
	return depotResponse{
		ID:       d.ID,
		Name:     d.Name,
		State:    string(d.State),
		District: d.District,
		TLName:   d.TLName,
		TLNumber: d.TLNumber,
		Address:  d.Address,
		MapLink:  d.MapLink,
	}
}

func toStatsResponse(s model.DepotStats) statsResponse {
	return statsResponse{
		Total:     s.Total,
		Bihar:     s.Bihar,
		Jharkhand: s.Jharkhand,
	}
}
