package bridge

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultStatusLimit is the fail-on-status threshold. The comparison is a
// strict greater-than: a 400 response passes, 401 and up fail.
const DefaultStatusLimit = 400

// StatusCode extracts the numeric status from the Status pseudo-header.
// A missing header means the request succeeded with 200. Otherwise the first
// whitespace-delimited token of the value must parse as an unsigned 16-bit
// integer; anything else is ErrInvalidStatus.
func StatusCode(headers HeaderMap) (int, error) {
	value, ok := headers["status"]
	if !ok {
		return 200, nil
	}

	token := strings.Fields(value)
	if len(token) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}

	code, err := strconv.ParseUint(token[0], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, token[0])
	}
	return int(code), nil
}
