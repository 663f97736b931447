// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"mellium.im/xmlstream"

	"mellium.im/jabber/internal/attr"
	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// Errors returned by Stream.
var (
	ErrClosed         = errors.New("transport: stream closed")
	ErrUnknownSession = errors.New("transport: unknown session")
)

// Option configures a Stream.
type Option func(*Stream)

// Logger sets the logger used to report stream level events.
// By default nothing is logged.
func Logger(l *slog.Logger) Option {
	return func(s *Stream) {
		s.logger = l
	}
}

// SessionID sets the ID of the session carried by the stream.
// Sends addressed to any other non-empty session ID fail.
func SessionID(sid string) Option {
	return func(s *Stream) {
		s.sid = sid
	}
}

// readAhead is the number of elements read before they are processed.
const readAhead = 32

type frame struct {
	toks []xml.Token
	err  error
}

// Stream is a Transport carrying a single session over an XML stream that has
// already been negotiated (after TLS, authentication, and resource binding if
// any).
//
// If the input starts with a stream header its id attribute is recorded and
// the header is skipped.
// A stream error or the end of the stream is reported by Process as Fatal.
type Stream struct {
	sid    string
	logger *slog.Logger
	r      io.Reader
	w      io.Writer

	wmu sync.Mutex
	enc *xml.Encoder

	reader    sync.Once
	in        chan frame
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	id     string
	last   time.Time
	ignore bool
	fatal  error
}

// NewStream returns a stream that reads and writes stanzas on rw.
// Reading starts on the first call to Process.
func NewStream(rw io.ReadWriter, opts ...Option) *Stream {
	s := &Stream{
		r:    rw,
		w:    rw,
		enc:  xml.NewEncoder(rw),
		in:   make(chan frame, readAhead),
		done: make(chan struct{}),
		last: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// StreamID returns the id attribute of the inbound stream header, if one has
// been read.
func (s *Stream) StreamID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Send satisfies the Transport interface.
func (s *Stream) Send(sid string, r xml.TokenReader) error {
	if sid != "" && sid != s.sid {
		return ErrUnknownSession
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	if _, err := xmlstream.Copy(s.enc, r); err != nil {
		return err
	}
	if err := s.enc.Flush(); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.ignore {
		s.last = time.Now()
	}
	s.mu.Unlock()
	return nil
}

// IgnoreActivity satisfies the Transport interface.
func (s *Stream) IgnoreActivity(sid string, ignore bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignore = ignore
}

// LastActivity satisfies the Transport interface.
func (s *Stream) LastActivity(sid string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Process satisfies the Transport interface.
// It waits up to timeout for the first element, then dispatches the elements
// that have already been read without waiting for more.
// A timeout of zero or less polls for input without blocking.
func (s *Stream) Process(timeout time.Duration, d Dispatcher) (Status, error) {
	s.mu.Lock()
	fatal := s.fatal
	s.mu.Unlock()
	if fatal != nil {
		return Fatal, fatal
	}
	s.reader.Do(func() {
		go s.read()
	})

	if timeout <= 0 {
		select {
		case f := <-s.in:
			return s.drain(f, d)
		case <-s.done:
			return Fatal, ErrClosed
		default:
			return NoData, nil
		}
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case f := <-s.in:
		return s.drain(f, d)
	case <-s.done:
		return Fatal, ErrClosed
	case <-t.C:
		return NoData, nil
	}
}

// drain handles f and then any frames that are already buffered, up to the
// size of the buffer.
// Errors from the dispatcher do not stop the drain and are joined.
// A read error after the first frame is recorded and reported by the next
// call to Process.
func (s *Stream) drain(f frame, d Dispatcher) (Status, error) {
	status, err := s.handle(f, d)
	if status == Fatal {
		return status, err
	}
	errs := []error{err}
	for i := 0; i < cap(s.in); i++ {
		select {
		case f = <-s.in:
		default:
			return status, errors.Join(errs...)
		}
		st, err := s.handle(f, d)
		if st == Fatal {
			break
		}
		errs = append(errs, err)
	}
	return status, errors.Join(errs...)
}

func (s *Stream) handle(f frame, d Dispatcher) (Status, error) {
	if f.err != nil {
		s.mu.Lock()
		s.fatal = f.err
		s.mu.Unlock()
		return Fatal, f.err
	}
	toks := tokenSlice(f.toks)
	return DataReceived, d.DispatchTokens(s.sid, &toks)
}

// Close ends the stream and closes the underlying writer if it is an
// io.Closer.
// Pending and future calls to Process report Fatal.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wmu.Lock()
		_, err = io.WriteString(s.w, "</stream:stream>")
		s.wmu.Unlock()
		if c, ok := s.w.(io.Closer); ok {
			if e := c.Close(); err == nil {
				err = e
			}
		}
	})
	return err
}

func (s *Stream) deliver(f frame) bool {
	select {
	case s.in <- f:
		return true
	case <-s.done:
		return false
	}
}

func (s *Stream) read() {
	d := xml.NewDecoder(s.r)
	for {
		tok, err := d.Token()
		if err != nil {
			s.logger.Debug("stream read failed", "sid", s.sid, "err", err)
			s.deliver(frame{err: err})
			return
		}

		var start xml.StartElement
		switch t := tok.(type) {
		case xml.StartElement:
			start = t.Copy()
		case xml.EndElement:
			if t.Name.Space == ns.Stream && t.Name.Local == "stream" {
				s.logger.Debug("stream closed by peer", "sid", s.sid)
				s.deliver(frame{err: io.EOF})
				return
			}
			s.deliver(frame{err: BadFormat})
			return
		default:
			continue
		}

		if start.Name.Space == ns.Stream && start.Name.Local == "stream" {
			_, id := attr.Get(start.Attr, "id")
			s.mu.Lock()
			s.id = id
			s.mu.Unlock()
			continue
		}

		toks, err := readElement(d, start)
		if err != nil {
			s.deliver(frame{err: err})
			return
		}
		if start.Name.Space == ns.Stream && start.Name.Local == "error" {
			ts := tokenSlice(toks)
			el, err := stanza.Decode(&ts)
			if err != nil {
				s.deliver(frame{err: err})
				return
			}
			se := ParseStreamError(el)
			s.logger.Debug("stream error", "sid", s.sid, "err", se)
			s.deliver(frame{err: se})
			return
		}
		if !s.deliver(frame{toks: toks}) {
			return
		}
	}
}

func readElement(d *xml.Decoder, start xml.StartElement) ([]xml.Token, error) {
	toks := []xml.Token{start}
	inner := xmlstream.Inner(d)
	for {
		tok, err := inner.Token()
		if tok != nil {
			toks = append(toks, xml.CopyToken(tok))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return append(toks, start.End()), nil
}

type tokenSlice []xml.Token

func (t *tokenSlice) Token() (xml.Token, error) {
	if len(*t) == 0 {
		return nil, io.EOF
	}
	tok := (*t)[0]
	*t = (*t)[1:]
	return tok, nil
}
