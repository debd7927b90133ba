package core

// Edge selects which signal transition triggers a capture
type Edge uint8

const (
	EdgeRising Edge = iota
	EdgeFalling
)

func (e Edge) String() string {
	if e == EdgeRising {
		return "rising"
	}
	return "falling"
}

// CaptureDriver is the abstract edge-capture peripheral the capture engine
// uses. The platform implementation timestamps edges on three inputs with a
// free-running, wrapping counter and calls CaptureEngine.Capture for each.
type CaptureDriver interface {
	// ConfigureCapture prepares the input of a channel
	ConfigureCapture(ch ChannelID) error

	// SelectEdge selects the edge that triggers the next capture on the input
	SelectEdge(ch ChannelID, edge Edge)
}

// Global singleton registered by target code.
var captureDriver CaptureDriver

// SetCaptureDriver is called by target-specific code to register its driver.
func SetCaptureDriver(d CaptureDriver) {
	captureDriver = d
}

// GetCaptureDriver returns the registered driver, or nil
func GetCaptureDriver() CaptureDriver {
	return captureDriver
}
