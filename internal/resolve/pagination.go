package resolve

import (
	"sitewright/internal/model"
)

// Pagination is the side-channel metadata a pagination-controls collaborator
// consumes. It is keyed by the resolved loop layer's id in Result.Pagination.
// LayerTemplate is retained in load_more mode so subsequent pages can be
// appended client-side without a full re-render.
type Pagination struct {
	CurrentPage   int                  `json:"currentPage"`
	TotalPages    int                  `json:"totalPages"`
	TotalItems    int                  `json:"totalItems"`
	ItemsPerPage  int                  `json:"itemsPerPage"`
	Mode          model.PaginationMode `json:"mode"`
	LayerTemplate *model.Layer         `json:"layerTemplate,omitempty"`
}

// paginate computes the window for the given page over the filtered item
// count. The page is clamped to [1, totalPages] and totals are computed on
// the filtered set so page counts stay correct.
func paginate(totalItems, itemsPerPage, page int) (offset, limit, totalPages, currentPage int) {
	if itemsPerPage <= 0 {
		return 0, totalItems, 1, 1
	}
	totalPages = (totalItems + itemsPerPage - 1) / itemsPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	offset = (page - 1) * itemsPerPage
	limit = itemsPerPage
	if offset+limit > totalItems {
		limit = totalItems - offset
	}
	if limit < 0 {
		limit = 0
	}
	return offset, limit, totalPages, page
}
