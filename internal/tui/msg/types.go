package msg

// ErrMsg wraps an error to be displayed in the UI.
type ErrMsg struct {
	Err error
}

// PropsMsg carries a property update for the hosted component instance.
type PropsMsg[P any] struct {
	Props P
}

// UnmountMsg unmounts the hosted component instance. When Quit is set the
// program exits once the unmount has propagated.
type UnmountMsg struct {
	Quit bool
}

// EffectMsg reports an effect that was handled outside the update loop.
type EffectMsg struct {
	Text string
}

// RunMsg carries work scheduled onto the event loop from another
// goroutine. The host runs Fn when the message is handled.
type RunMsg struct {
	Fn func()
}
