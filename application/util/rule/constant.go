package rule

const (
	CR byte = '\r'
	LF byte = '\n'
)

// CRLF terminates every line of an HTTP/1.1 message, including chunk size lines and chunk data.
var CRLF = []byte{CR, LF}
