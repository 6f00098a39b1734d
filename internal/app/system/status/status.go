// Package status defines the lifecycle status values shared across
// collections.
package status

const (
	Active   = "active"
	Disabled = "disabled"
)
