package depot

import (
	"github.com/pushgo/depotman/internal/model"
	"github.com/pushgo/depotman/internal/repository"
)

// toRow はアプリケーション側のデポをストアの列表現に変換する。
// created_atはストア側で付与するため設定しない。
func toRow(d model.Depot) repository.DepotRow {
	return repository.DepotRow{
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

// fromRow はストアの列表現をアプリケーション側のデポに変換する。
func fromRow(r repository.DepotRow) model.Depot {
	return model.Depot{
		ID:       r.ID,
		Name:     r.Name,
		State:    model.Region(r.State),
		District: r.District,
		TLName:   r.TLName,
		TLNumber: r.TLNumber,
		Address:  r.Address,
		MapLink:  r.MapLink,
	}
}

func fromRows(rows []repository.DepotRow) []model.Depot {
	depots := make([]model.Depot, len(rows))
	for i, r := range rows {
		depots[i] = fromRow(r)
	}
	return depots
}
