package listquery

// State holds the query state of one list screen. It is exported for API
// consumers that keep list state between requests (the HTTP handlers are
// stateless and bind Params per request instead). Mutators enforce the rule
// every consumer must honor: changing the search term, a categorical filter
// or the sort key puts the viewer back on page 1.
type State struct {
	params Params
}

func NewState(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &State{params: Params{
		Filters:  make(map[string]string),
		Page:     1,
		PageSize: pageSize,
	}}
}

func (s *State) SetSearch(term string) {
	if s.params.Search == term {
		return
	}
	s.params.Search = term
	s.params.Page = 1
}

func (s *State) SetFilter(field, value string) {
	if s.params.Filters[field] == value {
		return
	}
	s.params.Filters[field] = value
	s.params.Page = 1
}

func (s *State) SetSort(key Sort) {
	if s.params.Sort == key {
		return
	}
	s.params.Sort = key
	s.params.Page = 1
}

func (s *State) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.params.Page = page
}

func (s *State) Params() Params {
	// filters map is shared; callers treat Params as read-only
	return s.params
}
