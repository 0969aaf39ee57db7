package observe

// Query selects the effective time window for a time query. TimeIntervals
// is its own window; an EventData contributes its selection intervals.
// Passing anything else as a query is a compile error.
type Query interface {
	QueryWindow() TimeIntervals
}

// Data is the capability shared by every dataset variant: each one owns the
// observation intervals describing where it has support. Variants that can
// be restricted in time (PointData, ContinuousData) additionally expose a
// typed TimeQuery method; a variant without one simply cannot be queried,
// there is no runtime "not implemented" stub.
type Data interface {
	ObsIntervals() TimeIntervals
}

var (
	_ Data = PointData{}
	_ Data = ContinuousData{}
	_ Data = EventData{}

	_ Query = TimeIntervals{}
	_ Query = EventData{}
)
