// Package scroll turns sentinel visibility into "load next page" requests.
//
// The sentinel is the virtual row one past the end of the results list. The
// controller is edge-triggered: it asks for a page once per hidden-to-visible
// transition, never while the sentinel simply stays on screen.
package scroll

// DefaultMargin is how many rows beyond the viewport's bottom edge still
// count as visible.
const DefaultMargin = 5

// Pager is the side of the search pipeline the controller drives.
type Pager interface {
	CanLoadMore() bool
	// LoadNextPage requests the next page and reports whether it was issued.
	LoadNextPage() bool
}

// Controller observes sentinel visibility for one search session.
type Controller struct {
	pager   Pager
	visible bool
}

// New returns a detached controller.
func New() *Controller {
	return &Controller{}
}

// Attach starts observing on behalf of p. Any previous pager is replaced.
func (c *Controller) Attach(p Pager) {
	c.pager = p
	c.visible = false
}

// Detach stops observation. Later Observe calls are ignored.
func (c *Controller) Detach() {
	c.pager = nil
	c.visible = false
}

// Attached reports whether a pager is attached.
func (c *Controller) Attached() bool {
	return c.pager != nil
}

// Rearm is called after new rows are rendered: the sentinel has moved, so
// the next visible observation is a fresh transition.
func (c *Controller) Rearm() {
	c.visible = false
}

// Observe records the sentinel's visibility. On a hidden-to-visible edge it
// asks the pager for the next page when the pager can load more, and reports
// whether a page was requested.
func (c *Controller) Observe(visible bool) bool {
	if c.pager == nil {
		return false
	}
	edge := visible && !c.visible
	c.visible = visible
	if !edge || !c.pager.CanLoadMore() {
		return false
	}
	return c.pager.LoadNextPage()
}

// SentinelVisible reports whether the sentinel row (index listLen) lies
// within margin rows past viewportBottom, the index one past the last
// visible row.
func SentinelVisible(viewportBottom, listLen, margin int) bool {
	if margin < 0 {
		margin = 0
	}
	return listLen <= viewportBottom+margin
}
