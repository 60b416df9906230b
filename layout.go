package plot

// Layout assigns each subplot slot a placement transform.
//
// Place maps a subplot's local normalized space [-1,1]x[-1,1] into the
// canvas's normalized device space. slot identifies the subplot and
// total is the slot count declared for the current frame; the two are
// recomputed on every selection change. Implementations return
// ErrInvalidSlot (wrapped) when slot falls outside the declared range
// or outside the strategy's own configured geometry.
//
// Implementations live in the layout package: Grid, Boxed, and Stacked.
// The interface is declared here so batch and canvas consume placements
// without importing the strategies.
type Layout interface {
	Place(slot, total int) (Transform, error)
}
