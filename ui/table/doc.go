// Package table derives the visible view of a data table from an immutable
// row sequence and transient UI state.
//
// The pipeline is sort → filter → paginate. Every stage returns a new slice
// and leaves its input untouched. Sort, filter and expansion state belong to
// the Table; pagination and selection belong to the caller, which only
// receives change requests through Handlers.
package table
