package selection

import (
	"strings"

	"github.com/aleister1102/apiextract/internal/models"
)

// Criteria narrows a response set. Zero values select everything.
type Criteria struct {
	// Search is matched case-insensitively against the response URL, pathname and hostname,
	// and against the URL and title of the response's page
	Search string
	// PageIDs limits page-linked responses to these pages. Responses without a page stay visible.
	PageIDs []string
}

// IsEmpty reports whether the criteria select everything
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Search) == "" && len(c.PageIDs) == 0
}

// Filter returns the responses matching criteria, preserving order
func Filter(responses []models.ApiResponse, pages []models.Page, criteria Criteria) []models.ApiResponse {
	if criteria.IsEmpty() {
		return append([]models.ApiResponse(nil), responses...)
	}

	pageByID := make(map[string]models.Page, len(pages))
	for _, p := range pages {
		pageByID[p.ID] = p
	}

	var selectedPages map[string]bool
	if len(criteria.PageIDs) > 0 {
		selectedPages = make(map[string]bool, len(criteria.PageIDs))
		for _, id := range criteria.PageIDs {
			selectedPages[strings.TrimSpace(id)] = true
		}
	}

	needle := strings.ToLower(strings.TrimSpace(criteria.Search))

	var out []models.ApiResponse
	for _, r := range responses {
		if selectedPages != nil && r.HasPage() && !selectedPages[r.ParentPageID] {
			continue
		}
		if needle != "" && !matches(r, pageByID, needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r models.ApiResponse, pageByID map[string]models.Page, needle string) bool {
	fields := []string{r.SourcePath, r.Pathname, r.Hostname}
	if page, ok := pageByID[r.ParentPageID]; ok && r.HasPage() {
		fields = append(fields, page.URL, page.Title)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// FilterPages returns pages whose URL or title contains search, case-insensitively
func FilterPages(pages []models.Page, search string) []models.Page {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return append([]models.Page(nil), pages...)
	}

	var out []models.Page
	for _, p := range pages {
		if strings.Contains(strings.ToLower(p.URL), needle) || strings.Contains(strings.ToLower(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}
