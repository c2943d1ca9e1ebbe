package bridge

import (
	"fmt"
	"io"
)

// Router decides what part of the raw response stream ends up where. The
// header block is only ever parsed when a decision actually depends on it:
// when failing on status, when headers are excluded from the output, or when
// a header dump was requested. Otherwise the raw buffer passes through
// verbatim, unparseable headers included.
type Router struct {
	IncludeHeaders bool
	FailOnStatus   bool
	StatusLimit    int       // strict greater-than; zero means DefaultStatusLimit
	DumpHeaders    io.Writer // nil when no dump destination is configured
}

// Route writes the selected byte ranges of raw to out (and the header block
// to DumpHeaders when set). On UpstreamError or ErrMalformedHeaders nothing
// is written to out; a header dump flushed before a later write failure is
// deliberately not rolled back.
func (r *Router) Route(raw []byte, out io.Writer) error {
	needParse := r.FailOnStatus || !r.IncludeHeaders || r.DumpHeaders != nil
	if !needParse {
		if _, err := out.Write(raw); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	outcome, err := ParseHeaders(raw)
	if err != nil {
		return err
	}

	if r.FailOnStatus {
		code, err := StatusCode(outcome.Headers)
		if err != nil {
			return err
		}
		limit := r.StatusLimit
		if limit == 0 {
			limit = DefaultStatusLimit
		}
		if code > limit {
			return &UpstreamError{Status: code}
		}
	}

	if r.DumpHeaders != nil {
		headerLen := len(raw) - len(outcome.Body)
		if _, err := r.DumpHeaders.Write(raw[:headerLen]); err != nil {
			return fmt.Errorf("write header dump: %w", err)
		}
	}

	payload := outcome.Body
	if r.IncludeHeaders {
		payload = raw
	}
	if _, err := out.Write(payload); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
