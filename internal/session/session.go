// Package session keeps the address bar and back/forward state of one UI
// client. Every visit re-fetches through the relay; nothing is cached.
package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/proxyview/internal/address"
	"github.com/raysh454/proxyview/internal/logging"
	"github.com/raysh454/proxyview/internal/model"
)

var (
	ErrNoBack    = errors.New("session: no earlier page")
	ErrNoForward = errors.New("session: no later page")
	ErrNoPage    = errors.New("session: nothing loaded yet")
)

// Resolver is satisfied by *intercept.Handler.
type Resolver interface {
	Resolve(ctx context.Context, d model.RequestDescriptor, log logging.Logger) model.Reply
}

// Page is one rendered visit.
type Page struct {
	Descriptor model.RequestDescriptor
	Display    string
	Title      string
	Reply      model.Reply
}

type entry struct {
	descriptor model.RequestDescriptor
	display    string
}

type Session struct {
	normalizer *address.Normalizer
	resolver   Resolver
	logger     logging.Logger

	mu      sync.Mutex
	history []entry
	cursor  int
}

func New(n *address.Normalizer, r Resolver, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{
		normalizer: n,
		resolver:   r,
		logger:     logger.With(logging.Field{Key: "component", Value: "session"}),
		cursor:     -1,
	}
}

// Navigate loads input and drops any forward history.
func (s *Session) Navigate(ctx context.Context, input string) *Page {
	norm := s.normalizer.Normalize(input)
	e := entry{descriptor: norm.Descriptor, display: norm.Display}

	s.mu.Lock()
	s.history = append(s.history[:s.cursor+1], e)
	s.cursor = len(s.history) - 1
	s.mu.Unlock()

	return s.load(ctx, e)
}

func (s *Session) Back(ctx context.Context) (*Page, error) {
	s.mu.Lock()
	if s.cursor <= 0 {
		s.mu.Unlock()
		return nil, ErrNoBack
	}
	s.cursor--
	e := s.history[s.cursor]
	s.mu.Unlock()

	return s.load(ctx, e), nil
}

func (s *Session) Forward(ctx context.Context) (*Page, error) {
	s.mu.Lock()
	if s.cursor < 0 || s.cursor >= len(s.history)-1 {
		s.mu.Unlock()
		return nil, ErrNoForward
	}
	s.cursor++
	e := s.history[s.cursor]
	s.mu.Unlock()

	return s.load(ctx, e), nil
}

func (s *Session) Reload(ctx context.Context) (*Page, error) {
	e, ok := s.current()
	if !ok {
		return nil, ErrNoPage
	}
	return s.load(ctx, e), nil
}

// Current returns the descriptor and display text under the cursor.
func (s *Session) Current() (model.RequestDescriptor, string, bool) {
	e, ok := s.current()
	return e.descriptor, e.display, ok
}

// Len returns the number of history entries.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func (s *Session) current() (entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < 0 {
		return entry{}, false
	}
	return s.history[s.cursor], true
}

func (s *Session) load(ctx context.Context, e entry) *Page {
	reply := s.resolver.Resolve(ctx, e.descriptor, s.logger)
	return &Page{
		Descriptor: e.descriptor,
		Display:    e.display,
		Title:      Title(reply, e.display),
		Reply:      reply,
	}
}

// Title returns the document title of an HTML reply, or fallback.
func Title(reply model.Reply, fallback string) string {
	if !strings.HasPrefix(strings.ToLower(reply.ContentType), model.HTMLContentType) {
		return fallback
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(reply.Body))
	if err != nil {
		return fallback
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if h := strings.TrimSpace(doc.Find("h1").First().Text()); h != "" {
		return h
	}
	return fallback
}
