package run

// Query is the loading/error/ready tri-state a data source reports.
type Query struct {
	IsLoading bool
	IsError   bool
	Err       error
	Data      *Snapshot
}

// Loading returns a query that is still waiting for data.
func Loading() Query { return Query{IsLoading: true} }

// Failed returns a query whose fetch failed.
func Failed(err error) Query { return Query{IsError: true, Err: err} }

// Ready returns a query carrying the given snapshot.
func Ready(s *Snapshot) Query { return Query{Data: s} }

// Snapshot returns the data and true only when the query is ready. Loading,
// failed and empty queries all mean "nothing to render".
func (q Query) Snapshot() (*Snapshot, bool) {
	if q.IsLoading || q.IsError || q.Data == nil {
		return nil, false
	}
	return q.Data, true
}

// State names the query state for logs and API responses.
func (q Query) State() string {
	switch {
	case q.IsLoading:
		return "loading"
	case q.IsError:
		return "error"
	case q.Data == nil:
		return "empty"
	default:
		return "ready"
	}
}
