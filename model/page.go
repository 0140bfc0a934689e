package model

// Page is the envelope returned by list endpoints. A nil NextPage is the
// terminal page.
type Page[T any] struct {
	CurrentPage int  `json:"current_page"`
	NextPage    *int `json:"next_page"`
	PrevPage    *int `json:"prev_page"`
	Data        []T  `json:"data" validate:"dive"`
}

// HasNext reports whether a subsequent page exists.
func (p Page[T]) HasNext() bool {
	return p.NextPage != nil
}

// Pageable is implemented by inputs of paginated operations so the
// pagination adapter can thread the next page number into the next call.
type Pageable interface {
	SetPage(page int)
}

// PageParams is embedded in list inputs to satisfy Pageable.
type PageParams struct {
	Page    int `json:"page,omitempty" validate:"omitempty,min=1"`
	PerPage int `json:"per_page,omitempty" validate:"omitempty,min=1,max=100"`
}

// SetPage implements Pageable.
func (p *PageParams) SetPage(page int) {
	p.Page = page
}

// Empty is the output type of operations whose success body is ignored.
type Empty struct{}
