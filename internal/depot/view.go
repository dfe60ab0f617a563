package depot

import (
	"strings"

	"github.com/pushgo/depotman/internal/model"
)

// Filter は検索文字列と州でデポを絞り込む。
// 検索は名前・地区・TL名に対する大文字小文字を区別しない部分一致で、
// 空文字列はすべてに一致する。regionがRegionAll（または空）の場合は州で絞り込まない。
// 入力の順序は保持し、入力スライスは変更しない。
func Filter(depots []model.Depot, search string, region model.Region) []model.Depot {
	needle := strings.ToLower(search)

	result := make([]model.Depot, 0, len(depots))
	for _, d := range depots {
		if region != model.RegionAll && region != "" && d.State != region {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(d.Name), needle) &&
			!strings.Contains(strings.ToLower(d.District), needle) &&
			!strings.Contains(strings.ToLower(d.TLName), needle) {
			continue
		}
		result = append(result, d)
	}
	return result
}

// Aggregate はデポ一覧の件数を州別に集計する。
func Aggregate(depots []model.Depot) model.DepotStats {
	stats := model.DepotStats{Total: len(depots)}
	for _, d := range depots {
		switch d.State {
		case model.RegionBihar:
			stats.Bihar++
		case model.RegionJharkhand:
			stats.Jharkhand++
		}
	}
	return stats
}
