// Package stats holds the balance and statistics reducers. Every function in
// this package is pure: callers fetch rows from the store, pass them in, and
// render the returned values. Nothing here performs I/O, and the reducers
// cannot fail; only parsing of periods and ranges returns errors.
package stats
