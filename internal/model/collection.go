package model

// SortDirection orders a collection loop's item set.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortMode selects how the item set is ordered before pagination.
type SortMode string

const (
	SortManual SortMode = "manual" // stored item order
	SortRandom SortMode = "random" // deterministic per resolution
	SortNone   SortMode = "none"
	SortField  SortMode = "field" // by FieldID, numeric-aware
)

type SortConfig struct {
	Mode      SortMode      `json:"mode,omitempty"`
	FieldID   string        `json:"field_id,omitempty"`
	Direction SortDirection `json:"direction,omitempty"`
}

// PaginationMode selects how pages beyond the first are presented.
type PaginationMode string

const (
	PaginationPages    PaginationMode = "pages"
	PaginationLoadMore PaginationMode = "load_more"
)

type PaginationConfig struct {
	Mode         PaginationMode `json:"mode"`
	ItemsPerPage int            `json:"items_per_page"`
}

// CollectionVariable binds a layer to a data source, turning its subtree into
// a per-item template. When SourceFieldID is set the item set comes from the
// current item's field (single reference, multi reference, or multi asset)
// instead of a direct collection query.
type CollectionVariable struct {
	CollectionID  string            `json:"collection_id,omitempty"`
	SourceFieldID string            `json:"source_field_id,omitempty"`
	Sort          *SortConfig       `json:"sort,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Offset        int               `json:"offset,omitempty"`
	Filters       *ConditionGroup   `json:"filters,omitempty"`
	Pagination    *PaginationConfig `json:"pagination,omitempty"`
}

// Clone returns a deep copy of the binding.
func (cv *CollectionVariable) Clone() *CollectionVariable {
	if cv == nil {
		return nil
	}
	out := *cv
	if cv.Sort != nil {
		s := *cv.Sort
		out.Sort = &s
	}
	if cv.Pagination != nil {
		p := *cv.Pagination
		out.Pagination = &p
	}
	if cv.Filters != nil {
		f := ConditionGroup{Groups: make([][]Condition, len(cv.Filters.Groups))}
		for i, group := range cv.Filters.Groups {
			f.Groups[i] = append([]Condition(nil), group...)
		}
		out.Filters = &f
	}
	return &out
}
