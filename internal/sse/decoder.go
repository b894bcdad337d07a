// Package sse decodes a server-sent-event byte stream into a single shared
// sequence of framed events, exposed through two thin adapters (raw string,
// parsed JSON) so the two modes can never disagree about framing — the
// teacher's openai.Provider.CompleteStream instead duck-types its own
// ad hoc "data: " scan directly against the scanner, which is the
// inconsistency this package removes.
package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	venerr "github.com/sanix-darker/venice/internal/errors"
)

// Done is the sentinel payload that terminates a stream without producing
// a further event.
const Done = "[DONE]"

// Event is one dispatched SSE event: the accumulated event name (default
// "message"), the joined data payload, and an optional id.
type Event struct {
	Name string
	Data string
	ID   string
}

// NewScanner returns a bufio.Scanner sized for SSE payloads that commonly
// exceed bufio's default token limit, adapted unchanged from the teacher's
// stream_helpers.go NewSSEScanner.
func NewScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return s
}

// decoder is the single framing loop both iteration modes are built on.
type decoder struct {
	scanner *bufio.Scanner
	closer  io.Closer
	done    bool
}

func newDecoder(body io.ReadCloser) *decoder {
	return &decoder{scanner: NewScanner(body), closer: body}
}

// next reads and frames the next SSE event from the stream. ok is false
// once the stream ends or the [DONE] sentinel is observed; err is non-nil
// only on a genuine read failure.
func (d *decoder) next() (ev Event, ok bool, err error) {
	if d.done {
		return Event{}, false, nil
	}

	var dataLines []string
	name := "message"
	var id string
	haveEvent := false

	for d.scanner.Scan() {
		line := d.scanner.Text()

		switch {
		case line == "":
			if !haveEvent {
				continue // blank lines before any field are ignored
			}
			data := strings.Join(dataLines, "\n")
			if data == Done {
				d.done = true
				return Event{}, false, nil
			}
			return Event{Name: name, Data: data, ID: id}, true, nil

		case strings.HasPrefix(line, ":"):
			continue // comment

		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			haveEvent = true

		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			haveEvent = true

		case strings.HasPrefix(line, "id:"):
			id = strings.TrimSpace(strings.TrimPrefix(line, "id:"))
			haveEvent = true

		case strings.HasPrefix(line, "retry:"):
			haveEvent = true // retry hints are accepted but not surfaced

		default:
			// Unrecognized field name; ignored per the SSE framing rules.
		}
	}

	if err := d.scanner.Err(); err != nil {
		return Event{}, false, venerr.Wrap(venerr.KindDecodeError, "failed to read SSE stream", err, nil)
	}

	// EOF with a pending, undispatched event: dispatch it, matching a
	// server that closes the connection right after its final blank-line-
	// less chunk. If nothing was accumulated, the stream simply ended.
	if haveEvent {
		d.done = true
		data := strings.Join(dataLines, "\n")
		if data == Done {
			return Event{}, false, nil
		}
		return Event{Name: name, Data: data, ID: id}, true, nil
	}

	d.done = true
	return Event{}, false, nil
}

func (d *decoder) Close() error {
	d.done = true
	return d.closer.Close()
}

// RawIterator yields each event's joined data payload as a string.
type RawIterator struct {
	d       *decoder
	ctx     context.Context
	lastErr error
}

// NewRawIterator builds a raw-string iterator over body.
func NewRawIterator(ctx context.Context, body io.ReadCloser) *RawIterator {
	return &RawIterator{d: newDecoder(body), ctx: ctx}
}

// Next advances to the next payload. ok is false when the stream is
// exhausted (including on [DONE] or context cancellation); check Err after
// a false return to distinguish clean termination from failure.
func (it *RawIterator) Next() (payload string, ok bool) {
	if it.ctx.Err() != nil {
		return "", false
	}
	ev, ok, err := it.d.next()
	it.lastErr = err
	if err != nil || !ok {
		return "", false
	}
	return ev.Data, true
}

func (it *RawIterator) Err() error { return it.lastErr }

// Close closes the underlying response body promptly; no further bytes
// are read.
func (it *RawIterator) Close() error { return it.d.Close() }

// ParsedIterator yields each event's data payload decoded as JSON.
type ParsedIterator struct {
	d       *decoder
	ctx     context.Context
	lastErr error
}

// NewParsedIterator builds a parsed-JSON iterator over body.
func NewParsedIterator(ctx context.Context, body io.ReadCloser) *ParsedIterator {
	return &ParsedIterator{d: newDecoder(body), ctx: ctx}
}

// Next decodes the next payload as JSON. A malformed payload (anything
// that isn't [DONE] and fails json.Unmarshal) surfaces as a DecodeError via
// Err and stops iteration.
func (it *ParsedIterator) Next() (value interface{}, ok bool) {
	if it.ctx.Err() != nil {
		return nil, false
	}
	ev, ok, err := it.d.next()
	if err != nil {
		it.lastErr = err
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var v interface{}
	if err := json.Unmarshal([]byte(ev.Data), &v); err != nil {
		it.lastErr = venerr.Wrap(venerr.KindDecodeError, "malformed SSE JSON payload", err, map[string]string{"preview": previewPayload(ev.Data)})
		return nil, false
	}
	return v, true
}

func (it *ParsedIterator) Err() error { return it.lastErr }

// Close closes the underlying response body promptly.
func (it *ParsedIterator) Close() error { return it.d.Close() }

func previewPayload(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
