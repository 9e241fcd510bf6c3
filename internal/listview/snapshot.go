package listview

// Header describes one column of a snapshot.
type Header struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Sortable bool   `json:"sortable"`
}

// Row is one rendered table row.
type Row struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

// Snapshot is an immutable, type-erased copy of a view's state.
type Snapshot struct {
	Screen       string   `json:"screen"`
	Columns      []Header `json:"columns"`
	Rows         []Row    `json:"rows"`
	Loaded       int      `json:"loaded"`  // rows on the page before filtering
	Settled      bool     `json:"settled"` // some load has succeeded
	PageNumber   int      `json:"page_number"`
	PageSize     int      `json:"page_size"`
	TotalPages   int      `json:"total_pages"`
	FilterText   string   `json:"filter_text"`
	FilterColumn string   `json:"filter_column"`
	SortKey      string   `json:"sort_key,omitempty"`
	SortDesc     bool     `json:"sort_desc,omitempty"`
	Loading      bool     `json:"loading"`
	Deletable    bool     `json:"deletable"`
	Err          string   `json:"error,omitempty"`
	Unauthorized bool     `json:"unauthorized,omitempty"`
}

// HasPrev reports whether a previous page exists.
func (s Snapshot) HasPrev() bool { return s.PageNumber > 1 }

// HasNext reports whether a next page exists.
func (s Snapshot) HasNext() bool { return s.PageNumber < s.TotalPages }

// PrevPage returns the previous page number.
func (s Snapshot) PrevPage() int { return s.PageNumber - 1 }

// NextPage returns the next page number.
func (s Snapshot) NextPage() int { return s.PageNumber + 1 }

// Pages returns the page numbers to offer as direct links: a window of up to
// five pages around the current one.
func (s Snapshot) Pages() []int {
	const window = 5
	start := s.PageNumber - window/2
	if start < 1 {
		start = 1
	}
	end := start + window - 1
	if end > s.TotalPages {
		end = s.TotalPages
		start = max(1, end-window+1)
	}
	pages := make([]int, 0, window)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Column returns the index of the column with key, or -1.
func (s Snapshot) Column(key string) int {
	for i, h := range s.Columns {
		if h.Key == key {
			return i
		}
	}
	return -1
}
