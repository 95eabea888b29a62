package model

// Options control how a model download may proceed.
type Options struct {
	AllowsCellular           bool
	AllowsBackgroundDownload bool
}

// Event is an asynchronous download notification identified by model.
// Err is nil on success.
type Event struct {
	Model Model
	Err   error
}

// Manager is the external model-download subsystem. Download is asynchronous;
// exactly one Event per requested download is delivered on Events.
type Manager interface {
	// Download requests the model bundle. Safe to call for an already
	// downloaded model; an Event is still delivered.
	Download(m Model, opts Options)

	// Downloaded reports whether the model bundle is present locally.
	Downloaded(m Model) bool

	// Events delivers download completion notifications. The channel is owned
	// by the manager and closed by Close.
	Events() <-chan Event
}
