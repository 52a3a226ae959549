package asynciter

// Options carries the per-call, ambient defaults every factory function in
// this package consults unless a call site overrides them with one of the
// With* functions below. Process-wide instrumentation is a separate,
// one-time concern handled by RegisterMetrics rather than an Options field,
// since Prometheus collectors here aren't scoped to any one iterator.
type Options struct {
	// MaxBufferSize bounds how many produced-but-unread items an iterator
	// holds at once. Zero (the zero value) means unbounded, filled
	// maxFillPerTick items at a time.
	MaxBufferSize int
	// AutoStart, if true, starts filling an iterator's buffer immediately at
	// construction rather than waiting for the first Read()/data listener.
	AutoStart bool
}

// DefaultOptions returns the package's baseline configuration: a modest
// bounded buffer, eager filling.
func DefaultOptions() Options {
	return Options{
		MaxBufferSize: 4,
		AutoStart:     true,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxBufferSize == 0 {
		o.MaxBufferSize = DefaultOptions().MaxBufferSize
	}
	return o
}

// Option configures a single factory call, layered on top of Options.
type Option func(*Options)

// WithMaxBufferSize overrides the buffer cap for one iterator.
func WithMaxBufferSize(n int) Option {
	return func(o *Options) { o.MaxBufferSize = n }
}

// WithAutoStart overrides whether an iterator starts filling immediately.
func WithAutoStart(v bool) Option {
	return func(o *Options) { o.AutoStart = v }
}

func resolveOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
