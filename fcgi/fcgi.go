package fcgi

/*
FastCGI record framing. Every record is an 8 byte big-endian header followed
by content and up to 7 bytes of padding to keep records 8-byte aligned.
Parameter streams carry name-value pairs with 1-byte lengths below 128 and
4-byte lengths (high bit set) above.
*/

const version1 = 1

// record types
const (
	typeBeginRequest = 1
	typeAbortRequest = 2
	typeEndRequest   = 3
	typeParams       = 4
	typeStdin        = 5
	typeStdout       = 6
	typeStderr       = 7
)

const roleResponder = 1

// protocol status values carried in an end-request record
const (
	statusRequestComplete = 0
	statusCantMultiplex   = 1
	statusOverloaded      = 2
	statusUnknownRole     = 3
)

// maxRecordContent is the largest content length a single record can carry.
const maxRecordContent = 0xffff

type header struct {
	Version       uint8
	Type          uint8
	RequestID     uint16
	ContentLength uint16
	PaddingLength uint8
	Reserved      uint8
}

func newHeader(recType uint8, requestID uint16, contentLength int) header {
	return header{
		Version:       version1,
		Type:          recType,
		RequestID:     requestID,
		ContentLength: uint16(contentLength),
		PaddingLength: uint8(-contentLength & 7),
	}
}

// appendPairLen appends a name-value pair length in FastCGI encoding.
func appendPairLen(buf []byte, n int) []byte {
	if n < 128 {
		return append(buf, byte(n))
	}
	return append(buf, byte(n>>24)|0x80, byte(n>>16), byte(n>>8), byte(n))
}

// encodeParams flattens a parameter map into a name-value pair stream.
func encodeParams(params map[string]string) []byte {
	var buf []byte
	for name, value := range params {
		buf = appendPairLen(buf, len(name))
		buf = appendPairLen(buf, len(value))
		buf = append(buf, name...)
		buf = append(buf, value...)
	}
	return buf
}
