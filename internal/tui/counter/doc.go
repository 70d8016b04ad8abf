// Package counter is the demo component: a counter whose lifecycle and
// value changes are turned into Start, ValueChange, ValueSet and Stop
// effects.
//
// The component has two properties, value and setValue. Changing value
// from the host produces ValueChange; calling setValue produces ValueSet,
// after which the host store applies the new value and the resulting
// property update produces ValueChange.
package counter
