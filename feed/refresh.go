package feed

const (
	// RefreshThreshold is the drag distance in logical pixels a
	// pull-to-refresh gesture has to cross before releasing triggers
	// a refresh.
	RefreshThreshold = 40.0
	// MaxIndicatorAngle caps the rotation of the refresh indicator in
	// degrees, no matter how far the user keeps dragging.
	MaxIndicatorAngle = 180.0
)

// PullTracker follows one pull-to-refresh gesture on a touch screen.
// A gesture only arms when the touch starts while the feed is scrolled
// to the top; anything else is ordinary scrolling and never triggers a
// refresh. The zero value is ready to use.
type PullTracker struct {
	active   bool
	startY   float64
	distance float64
}

// Start begins tracking a touch that started at vertical position y.
// atTop says whether the feed was scrolled to the very top; if not,
// the gesture stays disarmed.
func (t *PullTracker) Start(y float64, atTop bool) {
	t.active = atTop
	t.startY = y
	t.distance = 0
}

// Move updates the tracked drag with the current vertical position and
// returns the new drag distance. Upward movement counts as zero, not
// negative.
func (t *PullTracker) Move(y float64) float64 {
	if !t.active {
		return 0
	}
	t.distance = y - t.startY
	if t.distance < 0 {
		t.distance = 0
	}
	return t.distance
}

// Distance returns the current downward drag distance.
func (t *PullTracker) Distance() float64 {
	if !t.active {
		return 0
	}
	return t.distance
}

// Progress returns how far along the gesture is towards triggering,
// between 0 and 1.
func (t *PullTracker) Progress() float64 {
	progress := t.Distance() / RefreshThreshold
	if progress > 1 {
		progress = 1
	}
	return progress
}

// IndicatorAngle returns the rotation of the refresh indicator in
// degrees, proportional to the drag distance and capped at
// MaxIndicatorAngle.
func (t *PullTracker) IndicatorAngle() float64 {
	angle := t.Distance() / RefreshThreshold * MaxIndicatorAngle
	if angle > MaxIndicatorAngle {
		angle = MaxIndicatorAngle
	}
	return angle
}

// End finishes the gesture and reports whether it crossed the threshold,
// i.e. whether the caller should refresh the feed now.
func (t *PullTracker) End() bool {
	triggered := t.active && t.distance >= RefreshThreshold
	t.Cancel()
	return triggered
}

// Cancel resets the tracker without triggering, e.g. when the touch
// turns out to be a scroll.
func (t *PullTracker) Cancel() {
	t.active = false
	t.startY = 0
	t.distance = 0
}
