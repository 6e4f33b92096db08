// Package diag defines the diagnostic model shared by every pipeline phase:
// severities, stable numeric codes, the Bag accumulator and the Reporter
// contract phases emit into.
package diag
