// Package watch polls a status page and reports when its status changes.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/castawaylabs/statuspage"
	"github.com/sirupsen/logrus"
)

const DefaultInterval = time.Second * 60

// StatusSource is satisfied by *statuspage.Client.
type StatusSource interface {
	Status(ctx context.Context) (statuspage.Status, error)
}

// Watcher polls Source every Interval. The first successful poll sets the
// baseline; after that OnChange is called whenever the indicator or the
// description differs from the previous poll. Failed polls go to OnError and
// leave the baseline alone.
type Watcher struct {
	Source   StatusSource
	Interval time.Duration
	OnChange func(prev, cur statuspage.Status)
	OnError  func(err error)
	Logger   *logrus.Entry

	last     *statuspage.Status
	stopC    chan struct{}
	stopOnce  sync.Once
	initOnce  sync.Once
	startOnce sync.Once
}

func (w *Watcher) init() {
	w.initOnce.Do(func() {
		w.stopC = make(chan struct{})
		if w.Interval <= 0 {
			w.Interval = DefaultInterval
		}
		if w.Logger == nil {
			w.Logger = logrus.NewEntry(logrus.StandardLogger())
		}
	})
}

// Start polls immediately and then on every tick until ctx is done or Stop is
// called. It returns at once; wg is released when polling ends. A Watcher
// polls from one goroutine only, so calls after the first do nothing.
func (w *Watcher) Start(ctx context.Context, wg *sync.WaitGroup) {
	w.init()
	w.startOnce.Do(func() { w.run(ctx, wg) })
}

func (w *Watcher) run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()

		w.tick(ctx)
		for {
			select {
			case <-ticker.C:
				w.tick(ctx)
			case <-ctx.Done():
				return
			case <-w.stopC:
				return
			}
		}
	}()
}

// Stop ends polling. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.init()
	w.stopOnce.Do(func() { close(w.stopC) })
}

func (w *Watcher) tick(ctx context.Context) {
	w.init()

	cur, err := w.Source.Status(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.Logger.Warnf("status poll failed: %v", err)
		if w.OnError != nil {
			w.OnError(err)
		}
		return
	}

	l := w.Logger.WithFields(logrus.Fields{
		"indicator": cur.Indicator,
	})

	if w.last == nil {
		l.Infof("baseline: %s", cur.Description)
		w.last = &cur
		return
	}

	prev := *w.last
	if prev == cur {
		l.Debug("unchanged")
		return
	}

	l.Warnf("status changed from %s to %s", prev.Indicator, cur.Indicator)
	w.last = &cur
	if w.OnChange != nil {
		w.OnChange(prev, cur)
	}
}
