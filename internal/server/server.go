// Package server serves a lab book over HTTP: every note is rendered as an
// HTML page, files next to the notes are served as they are, and open
// pages reload when their note changes on disk.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alnah/labnotes"
	"github.com/alnah/labnotes/internal/fileutil"
	"github.com/alnah/labnotes/internal/notes"
	"github.com/alnah/labnotes/internal/pipeline"
)

// Sentinel errors for serving.
var (
	ErrListen     = errors.New("cannot listen")
	ErrNotesDir   = errors.New("invalid notes directory")
	ErrNilBook    = errors.New("lab book is required")
	ErrNilConvert = errors.New("converter is required")
)

// FilesPrefix is the URL path under which files of the notes directory are
// served.
const FilesPrefix = "/files/"

// Timeouts of the HTTP server.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Converter renders notes. *labnotes.Converter implements it.
type Converter interface {
	Convert(ctx context.Context, input labnotes.Input) (*labnotes.ConvertResult, error)
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address, host:port.
	Addr string

	// LiveReload enables the websocket endpoint and the reload script in
	// every page.
	LiveReload bool

	// RateLimit is the sustained number of requests per second allowed per
	// client IP; 0 disables limiting. RateBurst is the bucket size.
	RateLimit float64
	RateBurst int

	// Logger receives request and watcher logs. Nil uses log.Default().
	Logger *log.Logger
}

// Server serves the notes of a lab book.
type Server struct {
	book   *notes.LabBook
	conv   Converter
	opts   Options
	logger *log.Logger

	files *os.Root
	cache *pageCache
	hub   *liveHub

	// caching is on while the watcher runs; without it pages could go
	// stale.
	caching atomic.Bool
	watcher *Watcher
}

// New creates a Server for book. The notes directory must exist.
func New(book *notes.LabBook, conv Converter, opts Options) (*Server, error) {
	if book == nil {
		return nil, ErrNilBook
	}
	if conv == nil {
		return nil, ErrNilConvert
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	root, err := os.OpenRoot(book.Dir())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotesDir, err)
	}

	return &Server{
		book:   book,
		conv:   conv,
		opts:   opts,
		logger: opts.Logger,
		files:  root,
		cache:  newPageCache(),
		hub:    newLiveHub(opts.Logger),
	}, nil
}

// Handler returns the routes of the server wrapped in its middleware.
// rateLimitCtx bounds the lifetime of the rate limiter's sweeper.
func (s *Server) Handler(rateLimitCtx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /{id}", s.handleNote)
	mux.Handle("GET "+FilesPrefix, http.StripPrefix(FilesPrefix, http.FileServerFS(noteFiles{s.files.FS()})))
	mux.HandleFunc("GET /healthz", handleHealth)
	if s.opts.LiveReload {
		mux.Handle("GET "+LivePath, s.hub)
	}

	mws := []Middleware{Logging(s.logger), SecurityHeaders()}
	if s.opts.RateLimit > 0 {
		limit, _ := RateLimit(rateLimitCtx, s.logger, s.opts.RateLimit, s.opts.RateBurst, 0)
		mws = append(mws, limit)
	}
	return chain(mux, mws...)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, notes.IndexID)
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	id, err := notes.ParseNoteID(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.servePage(w, r, id)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, id notes.NoteID) {
	page, err := s.page(r.Context(), id)
	if err != nil {
		s.writeError(w, r, id, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(page)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, id notes.NoteID, err error) {
	switch {
	case errors.Is(err, notes.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, context.Canceled):
		// Client went away.
	case errors.Is(err, notes.ErrTooLarge):
		http.Error(w, "note too large", http.StatusInternalServerError)
	case errors.Is(err, notes.ErrFrontMatter):
		s.logger.Printf("[HTTP] Note %s: %v", id, err)
		http.Error(w, fmt.Sprintf("note %s has invalid front matter", id), http.StatusInternalServerError)
	default:
		s.logger.Printf("[HTTP] Rendering %s failed: %v", id, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// page returns the rendered page of id, from the cache when possible.
func (s *Server) page(ctx context.Context, id notes.NoteID) ([]byte, error) {
	page, gen, ok := s.cache.get(id)
	if ok && s.caching.Load() {
		return page, nil
	}

	page, err := s.render(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.caching.Load() {
		s.cache.put(id, page, gen)
	}
	return page, nil
}

func (s *Server) render(ctx context.Context, id notes.NoteID) ([]byte, error) {
	note, err := s.book.Note(id)
	if errors.Is(err, notes.ErrNotFound) && id == notes.IndexID {
		note, err = s.contents()
	}
	if err != nil {
		return nil, err
	}

	source := note.Source
	if strings.TrimSpace(note.Body) == "" {
		source += "\n# " + note.Title() + "\n"
	}

	res, err := s.conv.Convert(ctx, labnotes.Input{
		Markdown:    source,
		Title:       note.Title(),
		FilesPrefix: FilesPrefix,
	})
	if err != nil {
		return nil, err
	}

	page := string(res.HTML)
	if s.opts.LiveReload {
		page = pipeline.InjectScript(page, liveScriptFor(id))
	}
	return []byte(page), nil
}

// contents builds the index of a lab book that has no index note: a list
// of every note by title.
func (s *Server) contents() (*notes.Note, error) {
	ids, err := s.book.List()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("# Lab notes\n\n")
	if len(ids) == 0 {
		b.WriteString("No notes yet.\n")
	}
	for _, id := range ids {
		title := id.String()
		if n, err := s.book.Note(id); err == nil {
			title = n.Title()
		}
		fmt.Fprintf(&b, "- [%s](%s)\n", escapeLinkText(title), id.Filename())
	}
	return notes.Parse(notes.IndexID, b.String())
}

// escapeLinkText escapes the characters that would end or nest link text.
func escapeLinkText(s string) string {
	return strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`).Replace(s)
}

// onChange keeps the cache and open pages in step with the notes directory.
func (s *Server) onChange(c Change) {
	switch {
	case c.All:
		s.cache.reset()
		if s.opts.LiveReload {
			s.hub.broadcast("")
		}
	case c.ID != "":
		s.cache.invalidate(c.ID)
		if c.Listing {
			s.cache.invalidate(notes.IndexID)
		}
		if s.opts.LiveReload {
			s.hub.broadcast(c.ID)
			if c.Listing && c.ID != notes.IndexID {
				s.hub.broadcast(notes.IndexID)
			}
		}
	default:
		// Images and attachments are not cached, but pages showing them
		// are out of date.
		if s.opts.LiveReload {
			s.hub.broadcast("")
		}
	}
}

// Watch starts the watcher of the notes directory. Pages are cached only
// while it runs.
func (s *Server) Watch() error {
	w, err := NewWatcher(s.book, s.logger, s.onChange)
	if err != nil {
		return fmt.Errorf("watching %s: %w", s.book.Dir(), err)
	}
	s.watcher = w
	s.caching.Store(true)
	w.Start()
	s.logger.Printf("[Watch] Watching %s", s.book.Dir())
	return nil
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
// ready, if not nil, is called with the bound address once the listener
// is open.
func (s *Server) ListenAndServe(ctx context.Context, ready func(addr net.Addr)) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %v", ErrListen, s.opts.Addr, err)
	}
	return s.Serve(ctx, ln, ready)
}

// Serve is ListenAndServe on an open listener. The listener is closed on
// return.
func (s *Server) Serve(ctx context.Context, ln net.Listener, ready func(addr net.Addr)) error {
	defer s.close()

	if err := s.Watch(); err != nil {
		// Serving still works; pages are rendered on every request.
		s.logger.Printf("[Watch] Disabled: %v", err)
	}

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	defer stopLimiter()

	srv := &http.Server{
		Handler:           s.Handler(limiterCtx),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          s.logger,
	}

	if ready != nil {
		ready(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Live pages hold hijacked connections Shutdown does not track.
	s.hub.close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) close() {
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Printf("[Watch] Stop: %v", err)
		}
	}
	s.caching.Store(false)
	_ = s.files.Close()
}

// noteFiles exposes the notes directory without its notes, hidden files or
// directory listings.
type noteFiles struct {
	fsys fs.FS
}

func (f noteFiles) Open(name string) (fs.File, error) {
	for elem := range strings.SplitSeq(name, "/") {
		if strings.HasPrefix(elem, ".") && elem != "." {
			return nil, fs.ErrNotExist
		}
	}
	if fileutil.IsMarkdown(name) {
		return nil, fs.ErrNotExist
	}

	file, err := f.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
