package download

// FailureKind classifies why a transfer finalized as Failed. Failures are
// recorded as task state and observed through Status; they are never raised
// to the caller of Submit.
type FailureKind int

const (
	// FailureDestinationPrepare means the destination directory or file could
	// not be created or opened. No partial output exists and no cleanup is
	// attempted.
	FailureDestinationPrepare FailureKind = iota

	// FailureTransport means the network or HTTP layer failed. Cleanup is
	// attempted if any bytes were written.
	FailureTransport

	// FailureUnexpected covers any other fault during execution. Cleanup is
	// attempted if any bytes were written.
	FailureUnexpected
)

// String returns a human-readable kind label
func (k FailureKind) String() string {
	switch k {
	case FailureDestinationPrepare:
		return "destination_prepare"
	case FailureTransport:
		return "transport"
	default:
		return "unexpected"
	}
}
