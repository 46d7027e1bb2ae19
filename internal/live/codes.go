package live

// Close codes classified as transient. 1000 (normal closure) is handled
// separately: it is retryable only when the close was not requested locally.
var retryableCloseCodes = map[int]bool{
	1001: true, // going away
	1002: true, // protocol error
	1003: true, // unsupported data
	1005: true, // no status received
	1006: true, // abnormal closure
	1011: true, // internal error
	1012: true, // service restart
	1013: true, // try again later
	1014: true, // bad gateway
	1015: true, // TLS handshake
}

func isRetryableCloseCode(code int, manualDisconnect bool) bool {
	if code == 1000 {
		return !manualDisconnect
	}
	return retryableCloseCodes[code]
}
