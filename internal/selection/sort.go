package selection

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/urlhandler"
)

// SortMode orders a response list
type SortMode string

const (
	SortDefault  SortMode = "default"
	SortSizeDesc SortMode = "size-desc"
	SortSizeAsc  SortMode = "size-asc"
	SortPath     SortMode = "path"
	SortDomain   SortMode = "domain"
	SortTime     SortMode = "time"
)

// SortModes lists every supported mode
var SortModes = []SortMode{SortDefault, SortSizeDesc, SortSizeAsc, SortPath, SortDomain, SortTime}

// ParseSortMode converts a flag value. An empty value is the default order.
func ParseSortMode(s string) (SortMode, error) {
	mode := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if mode == "" {
		return SortDefault, nil
	}
	for _, m := range SortModes {
		if m == mode {
			return m, nil
		}
	}
	return "", common.NewValidationError("sort", s, "unknown sort mode")
}

// Sort returns a sorted copy of responses. Ties keep input order; unknown modes keep input order.
func Sort(responses []models.ApiResponse, mode SortMode) []models.ApiResponse {
	out := append([]models.ApiResponse(nil), responses...)

	switch mode {
	case SortSizeDesc, SortSizeAsc:
		sizes := make([]int, len(out))
		for i := range out {
			sizes[i] = ContentSize(out[i].Content)
		}
		idx := indexOrder(len(out))
		sort.SliceStable(idx, func(a, b int) bool {
			if mode == SortSizeAsc {
				return sizes[idx[a]] < sizes[idx[b]]
			}
			return sizes[idx[a]] > sizes[idx[b]]
		})
		return reorder(out, idx)
	case SortPath:
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].SourcePath < out[b].SourcePath
		})
	case SortDomain:
		sort.SliceStable(out, func(a, b int) bool {
			da := urlhandler.RegistrableDomain(out[a].Hostname)
			db := urlhandler.RegistrableDomain(out[b].Hostname)
			if da != db {
				return da < db
			}
			return out[a].SourcePath < out[b].SourcePath
		})
	case SortTime:
		sort.SliceStable(out, func(a, b int) bool {
			return timestampBefore(out[a].Timestamp, out[b].Timestamp)
		})
	}
	return out
}

// ContentSize is the length of the compact JSON encoding of content
func ContentSize(content any) int {
	data, err := json.Marshal(content)
	if err != nil {
		return 0
	}
	return len(data)
}

func timestampBefore(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}

func indexOrder(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func reorder(responses []models.ApiResponse, idx []int) []models.ApiResponse {
	out := make([]models.ApiResponse, len(idx))
	for i, j := range idx {
		out[i] = responses[j]
	}
	return out
}
