package pagination

// Pagination is the page/limit query pair accepted by list endpoints. A zero
// Page means the caller wants the full unpaged list.
type Pagination struct {
	Page  int `form:"page"`
	Limit int `form:"limit,default=20" validate:"gte=1,lte=250"`
}

// Paged reports whether the caller asked for a paged response.
func (p Pagination) Paged() bool {
	return p.Page > 0
}

// Offset converts the page number into a row offset.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Normalize()
}

// Normalize clamps the limit into its allowed bounds.
func (p Pagination) Normalize() int {
	if p.Limit <= 0 {
		return 20
	}
	if p.Limit > 250 {
		return 250
	}
	return p.Limit
}

// Envelope is the paged list response shape.
type Envelope[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func NewEnvelope[T any](items []T, total int64, p Pagination) *Envelope[T] {
	if items == nil {
		items = []T{}
	}
	return &Envelope[T]{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Normalize(),
	}
}
