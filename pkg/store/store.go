// Package store is the single state container of the file manager.
//
// It owns the workspace tree and the state layered on top of it
// (navigation, selection, clipboard, undo history, uploads, pending
// conflicts) and is the only entry point for mutations. Every edit is
// applied to the local tree first and then mirrored to the storage
// backend; when the backend rejects it the edit is reverted, the user is
// notified and the tree is reloaded from the backend.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OpenMined/SyftUI-sub000/pkg/clipboard"
	"github.com/OpenMined/SyftUI-sub000/pkg/events"
	"github.com/OpenMined/SyftUI-sub000/pkg/history"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/metrics"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/navigation"
	"github.com/OpenMined/SyftUI-sub000/pkg/prefs"
	"github.com/OpenMined/SyftUI-sub000/pkg/ratelimit"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
	"github.com/OpenMined/SyftUI-sub000/pkg/syncsim"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

var (
	// ErrNotLoaded is returned by operations issued before Load
	ErrNotLoaded = errors.New("workspace not loaded")
	// ErrClosed is returned by operations issued after Close
	ErrClosed = errors.New("store closed")
	// ErrNoPreferences is returned by favorites when no preference store is set
	ErrNoPreferences = errors.New("preferences are disabled")
)

const (
	// DefaultUploadGrace is how long a finished upload stays listed
	DefaultUploadGrace = 2 * time.Second
	// maxNotifications bounds the toast list
	maxNotifications = 50
)

// NotifierFunc builds the sync notifier writing through sink
type NotifierFunc func(sink syncsim.StatusSink) syncsim.Notifier

// Options configures a Store
type Options struct {
	// Backend persists the tree; the store takes ownership of it
	Backend storage.Backend

	// BackendName labels metrics (memory, remote, local)
	BackendName string

	Logger logging.Logger

	// Sync holds the simulated status delays
	Sync syncsim.Config

	// Notifier replaces the status simulator when set
	Notifier NotifierFunc

	// HistoryLimit bounds the undo stack; 0 keeps everything
	HistoryLimit int

	// UploadGrace is how long finished uploads stay listed
	UploadGrace time.Duration

	// BandwidthLimit caps upload throughput in bytes per second; 0 = unlimited
	BandwidthLimit int64

	// View is the listing default, overridden by saved preferences
	View navigation.View

	// Prefs persists view settings and favorites; optional
	Prefs *prefs.Store

	// Env supplies clock and ids; zero fields fall back to the defaults
	Env mutate.Env
}

// Store aggregates the workspace state. It is safe for concurrent use.
type Store struct {
	backend     storage.Backend
	backendName string
	logger      logging.Logger
	env         mutate.Env
	notifier    syncsim.Notifier
	limiter     *ratelimit.Limiter
	uploadGrace time.Duration
	prefs       *prefs.Store
	bindings    history.Bindings

	history   *history.Log
	clipboard *clipboard.Clipboard
	nav       *navigation.History
	selection *navigation.Selection
	changes   *events.Broadcaster[Change]

	// opMu serializes mutations including their backend calls
	opMu sync.Mutex

	// mu guards the fields below
	mu            sync.RWMutex
	root          *models.FileSystemItem
	index         *tree.Index
	view          navigation.View
	pending       *batch
	uploads       []*models.UploadItem
	uploadTimers  map[string]*time.Timer
	notifications []Notification
	closed        bool
}

// New creates a store over opts.Backend. Call Load before using it.
func New(opts Options) (*Store, error) {
	if opts.Backend == nil {
		return nil, &models.ValidationError{Field: "backend", Message: "a backend is required"}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNullLogger()
	}
	if opts.BackendName == "" {
		opts.BackendName = string(storage.KindMemory)
	}
	if opts.UploadGrace <= 0 {
		opts.UploadGrace = DefaultUploadGrace
	}
	defaults := mutate.DefaultEnv()
	if opts.Env.Now == nil {
		opts.Env.Now = defaults.Now
	}
	if opts.Env.NewID == nil {
		opts.Env.NewID = defaults.NewID
	}
	if opts.Env.CopyID == nil {
		opts.Env.CopyID = defaults.CopyID
	}
	if opts.View.Sort == "" {
		opts.View = navigation.DefaultView()
	}

	s := &Store{
		backend:      opts.Backend,
		backendName:  opts.BackendName,
		logger:       opts.Logger.WithFields(logging.Fields{"component": "store", "backend": opts.BackendName}),
		env:          opts.Env,
		limiter:      ratelimit.NewLimiter(opts.BandwidthLimit),
		uploadGrace:  opts.UploadGrace,
		prefs:        opts.Prefs,
		bindings:     history.DefaultBindings(),
		history:      history.NewLog(opts.HistoryLimit),
		clipboard:    clipboard.New(),
		nav:          navigation.NewHistory(tree.Root),
		selection:    navigation.NewSelection(),
		changes:      events.NewBroadcaster[Change](),
		index:        tree.NewIndex(nil),
		view:         opts.View,
		uploadTimers: make(map[string]*time.Timer),
	}

	if s.prefs != nil {
		view, err := prefs.LoadView(s.prefs, opts.View)
		if err != nil {
			return nil, err
		}
		s.view = view
	}

	sink := syncsim.SinkFunc(s.SetStatus)
	if opts.Notifier != nil {
		s.notifier = opts.Notifier(sink)
	} else {
		s.notifier = syncsim.New(opts.Sync, sink)
	}
	return s, nil
}

// Close stops the sync notifier and pending timers, closes the change feed
// and the backend
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for id, t := range s.uploadTimers {
		t.Stop()
		delete(s.uploadTimers, id)
	}
	s.mu.Unlock()

	s.notifier.Close()
	s.changes.Close()
	return s.backend.Close()
}

// Tree returns the current root. The returned nodes are shared with the
// store and must not be modified.
func (s *Store) Tree() *models.FileSystemItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Item returns the node with the given id
func (s *Store) Item(id string) (*models.FileSystemItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Lookup(id)
}

// ItemAt returns the node at path p
func (s *Store) ItemAt(p string) (*models.FileSystemItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.LookupPath(p)
}

// Items returns the children of the current folder in display order
func (s *Store) Items() []*models.FileSystemItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayLocked()
}

func (s *Store) displayLocked() []*models.FileSystemItem {
	folder, ok := s.index.LookupPath(s.nav.Current())
	if !ok {
		return nil
	}
	return s.view.Display(folder.Children)
}

// Backend returns the storage backend
func (s *Store) Backend() storage.Backend {
	return s.backend
}

// History returns the undo/redo log
func (s *Store) History() *history.Log {
	return s.history
}

// Clipboard returns the current clipboard content
func (s *Store) Clipboard() (models.ClipboardItem, bool) {
	return s.clipboard.Peek()
}

// Subscribe returns a channel receiving every change. Slow subscribers
// miss events rather than blocking the store.
func (s *Store) Subscribe() chan Change {
	ch := s.changes.Subscribe()
	metrics.SetSubscribers(s.changes.Count())
	return ch
}

// Unsubscribe stops delivery to ch
func (s *Store) Unsubscribe(ch chan Change) {
	s.changes.Unsubscribe(ch)
	metrics.SetSubscribers(s.changes.Count())
}

// SetStatus applies a sync status to an item. It reports false when the
// item no longer exists, so that late timers are dropped.
func (s *Store) SetStatus(id string, status models.SyncStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil || s.closed {
		return false
	}
	root, ok := mutate.SetStatus(s.root, id, status)
	if !ok {
		return false
	}
	s.root = root
	s.index.Rebuild(root)
	s.publish(Change{Kind: ChangeStatus, IDs: []string{id}})
	return true
}

func (s *Store) publish(c Change) {
	if c.At.IsZero() {
		c.At = s.env.Now()
	}
	if c.Path == "" {
		c.Path = s.nav.Current()
	}
	s.changes.Publish(c)
}

// Notifications returns the toast messages, oldest first
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.notifications...)
}

// DismissNotification removes one toast
func (s *Store) DismissNotification(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i:i], s.notifications[i+1:]...)
			s.publish(Change{Kind: ChangeNotification})
			return true
		}
	}
	return false
}

func (s *Store) notify(level Level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      s.env.Now(),
	})
	if len(s.notifications) > maxNotifications {
		s.notifications = append([]Notification(nil), s.notifications[len(s.notifications)-maxNotifications:]...)
	}
	s.publish(Change{Kind: ChangeNotification})
}

// timed runs one backend call and records its latency
func (s *Store) timed(ctx context.Context, call string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	metrics.RecordBackendCall(s.backendName, call, time.Since(start))
	return err
}
