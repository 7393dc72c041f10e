package syncer

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"taskmind-backend/internal/log"
	"taskmind-backend/internal/models"
)

var (
	ErrOffline        = errors.New("offline")
	ErrSyncInProgress = errors.New("sync already running")
	ErrEmptyTitle     = errors.New("title is required")
)

// SyncReport summarizes one sweep.
type SyncReport struct {
	Attempted int
	Created   int
	// Existing counts entries the server already had under their client id.
	Existing int
	Failed   int
}

// Controller owns the local entry list. Every mutation is written through to
// the mirror before it returns.
type Controller struct {
	mirror Mirror
	remote Remote
	logger log.Logger

	mu      sync.Mutex
	entries []Entry
	online  bool
	syncing bool
}

func NewController(mirror Mirror, remote Remote, logger log.Logger) *Controller {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Controller{
		mirror:  mirror,
		remote:  remote,
		logger:  logger,
		entries: []Entry{},
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case !c.online:
		return Offline
	case c.syncing:
		return Syncing
	default:
		return OnlineIdle
	}
}

// Load reads the mirror into memory. When online it then runs a sweep.
func (c *Controller) Load(ctx context.Context, online bool) (SyncReport, error) {
	entries, err := c.mirror.Load(ctx)
	if err != nil {
		return SyncReport{}, err
	}

	c.mu.Lock()
	c.entries = entries
	c.online = online
	c.mu.Unlock()

	c.logger.Infof("loaded %d local tasks (%s)", len(entries), c.State())
	if !online {
		return SyncReport{}, nil
	}
	return c.Sync(ctx)
}

// Entries returns a copy of the list, newest first.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Add creates a local entry and persists it. The caller decides whether to sync.
func (c *Controller) Add(ctx context.Context, title string, description *string) (Entry, error) {
	if strings.TrimSpace(title) == "" {
		return Entry{}, ErrEmptyTitle
	}
	e := NewEntry(title, description)
	err := c.Mutate(ctx, func(list []Entry) []Entry {
		return append([]Entry{e}, list...)
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Mutate applies fn to the list and writes the result to the mirror.
func (c *Controller) Mutate(ctx context.Context, fn func([]Entry) []Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := fn(append([]Entry(nil), c.entries...))
	if next == nil {
		next = []Entry{}
	}
	c.entries = next
	return c.persistLocked(ctx)
}

// Clear drops every local entry.
func (c *Controller) Clear(ctx context.Context) error {
	return c.Mutate(ctx, func([]Entry) []Entry { return nil })
}

// SetOnline records a connectivity signal. Going from offline to online
// starts a sweep; the returned bool reports whether one ran.
func (c *Controller) SetOnline(ctx context.Context, online bool) (SyncReport, bool, error) {
	c.mu.Lock()
	was := c.online
	c.online = online
	c.mu.Unlock()

	if !online || was {
		if was != online {
			c.logger.Infof("connectivity lost")
		}
		return SyncReport{}, false, nil
	}
	c.logger.Infof("connectivity restored")
	rep, err := c.Sync(ctx)
	return rep, true, err
}

// Sync pushes every unsynced entry to the server, one at a time. Entries are
// sent with their client id, so a sweep that repeats a push whose ack was lost
// gets the existing row back instead of creating a second one. A failed push
// is logged and retried on the next sweep.
func (c *Controller) Sync(ctx context.Context) (SyncReport, error) {
	c.mu.Lock()
	if !c.online {
		c.mu.Unlock()
		return SyncReport{}, ErrOffline
	}
	if c.syncing {
		c.mu.Unlock()
		return SyncReport{}, ErrSyncInProgress
	}
	c.syncing = true
	var pending []Entry
	for _, e := range c.entries {
		if !e.Synced {
			pending = append(pending, e)
		}
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.syncing = false
		c.mu.Unlock()
	}()

	var rep SyncReport
	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Attempted++

		res, err := c.remote.CreateTask(ctx, e)
		if err != nil {
			rep.Failed++
			c.logger.Warnf("sync %s %q: %v", e.ClientID, e.Title, err)
			continue
		}
		if res.Created {
			rep.Created++
		} else {
			rep.Existing++
		}
		if err := c.ack(ctx, e.ClientID, res.Task); err != nil {
			// the server has the row; the next sweep gets it back by client id
			c.logger.Errorf("persist ack for %s: %v", e.ClientID, err)
		}
	}

	c.logger.Infof("sync done: %d attempted, %d created, %d existing, %d failed",
		rep.Attempted, rep.Created, rep.Existing, rep.Failed)
	return rep, nil
}

func (c *Controller) ack(ctx context.Context, clientID string, t models.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].ClientID != clientID {
			continue
		}
		c.entries[i].acknowledge(t)
		return c.persistLocked(ctx)
	}
	// cleared while the push was in flight
	return nil
}

// Refresh merges the server list into the local one. Local entries are never
// dropped; matching entries take the server's values and server rows unknown
// locally are added as synced.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	online := c.online
	c.mu.Unlock()
	if !online {
		return ErrOffline
	}

	remote, err := c.remote.ListTasks(ctx)
	if err != nil {
		return errors.Wrap(err, "list server tasks")
	}

	return c.Mutate(ctx, func(list []Entry) []Entry {
		byID := make(map[int64]int, len(list))
		byClient := make(map[string]int, len(list))
		for i, e := range list {
			if e.ID != nil {
				byID[*e.ID] = i
			}
			byClient[e.ClientID] = i
		}

		for _, t := range remote {
			i, ok := byID[t.ID]
			if !ok && t.ClientID != nil {
				i, ok = byClient[*t.ClientID]
			}
			if ok {
				list[i].absorb(t)
				list[i].Synced = true
				continue
			}
			list = append(list, FromTask(t))
		}

		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		return list
	})
}

func (c *Controller) persistLocked(ctx context.Context) error {
	snapshot := make([]Entry, len(c.entries))
	copy(snapshot, c.entries)
	if err := c.mirror.Save(ctx, snapshot); err != nil {
		return errors.Wrap(err, "save mirror")
	}
	return nil
}
