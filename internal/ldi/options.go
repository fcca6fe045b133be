package ldi

// OpenOptions bundles the small set of knobs a deployment needs to flip
// without a recompile. The zero value is fully functional: no direct I/O
// hint, and a logger that discards everything.
type OpenOptions struct {
	// DirectIO requests O_DIRECT (or the platform equivalent) on the
	// backing file. Best-effort: not every OS/filesystem combination
	// honors it, and a failure to enable it is not itself an error.
	DirectIO bool

	Logger Logger
}

func (o OpenOptions) logger(component string) Logger {
	if o.Logger == nil {
		return NopLogger()
	}
	return o.Logger.WithField("component", component)
}
