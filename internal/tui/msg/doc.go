// Package msg defines the message types used by the TUI's Bubbletea event loop.
//
// Hosts send these messages to a running program to drive a component
// instance: PropsMsg pushes new properties, UnmountMsg tears the instance
// down, and ErrMsg carries failures back into the view. Keeping them in one
// package lets commands outside the tui package (the props-file watcher,
// for example) produce them without importing the model.
package msg
