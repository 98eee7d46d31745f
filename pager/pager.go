// Package pager computes feed pagination bookkeeping. It does no I/O.
package pager

import "math"

// MaxPage is the highest page number clients may request.
const MaxPage = 1_000_000

// MaxForwardLinks is how many page links are shown past the current page
// when there are many pages.
const MaxForwardLinks = 9

// Offset returns the row offset of page for the given page size. Pages
// below 1 are treated as the first page. Offsets past math.MaxInt saturate.
func Offset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// A Page describes the current page of a feed.
type Page struct {
	Number   int `json:"page"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
	Returned int `json:"returned"`
}

// Start returns the 1-based position of the first item on the page.
func (p Page) Start() int {
	return min(Offset(p.Number, p.PerPage), math.MaxInt-1) + 1
}

// End returns the 1-based position of the last item on the page.
func (p Page) End() int {
	return p.Start() + p.Returned - 1
}

// Count returns the number of pages.
func (p Page) Count() int {
	if p.PerPage <= 0 || p.Total <= 0 {
		return 0
	}
	n := p.Total / p.PerPage
	if p.Total%p.PerPage != 0 {
		n++
	}
	return n
}

// HasPrev reports whether a link to the previous page is shown.
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a link to the next page is shown.
func (p Page) HasNext() bool {
	if p.PerPage <= 0 {
		return p.Total > 0
	}
	return p.Number < p.Count()
}

// Links returns the page numbers to link to, starting at 1. It is empty when
// everything fits on one page.
func (p Page) Links() []int {
	n := p.Count()
	if n <= 1 {
		return nil
	}
	last := n
	if n >= MaxForwardLinks && p.Number < n-MaxForwardLinks {
		last = p.Number + MaxForwardLinks
	}
	links := make([]int, 0, last)
	for i := 1; i <= last; i++ {
		links = append(links, i)
	}
	return links
}

// A Nav is the navigation metadata of a page as returned to clients.
type Nav struct {
	Page
	Start int   `json:"start"`
	End   int   `json:"end"`
	Pages int   `json:"pages"`
	Prev  int   `json:"prev,omitempty"`
	Next  int   `json:"next,omitempty"`
	Links []int `json:"links"`
}

// Nav returns the navigation metadata of p.
func (p Page) Nav() Nav {
	nav := Nav{
		Page:  p,
		Start: p.Start(),
		End:   p.End(),
		Pages: p.Count(),
		Links: p.Links(),
	}
	if nav.Links == nil {
		nav.Links = []int{}
	}
	if p.HasPrev() {
		nav.Prev = p.Number - 1
	}
	if p.HasNext() {
		nav.Next = p.Number + 1
	}
	return nav
}
