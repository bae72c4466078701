package version

// Version is the current version of the platform abstraction layer.
// It is stamped into every stored inventory snapshot.
const Version = "0.3.0"
