package attackcore

import (
	"log/slog"
	"sync"
	"time"
)

// Loader performs the one-time lazy load of the knowledge base. Arbitrarily
// many request handlers may race on the first call; exactly one load runs and
// every caller observes either the fully-built knowledge base or the load
// error. A failed load is cached and not retried within the process, so a
// persistent configuration error surfaces on every request instead of
// triggering silent re-parses.
type Loader struct {
	bundlePath   string
	snapshotPath string
	logger       *slog.Logger

	once sync.Once
	kb   *KnowledgeBase
	err  error
}

// LoaderOptions configure where the dataset comes from.
type LoaderOptions struct {
	// BundlePath is the STIX bundle (enterprise-attack.json).
	BundlePath string
	// SnapshotPath, when set, names a bolt snapshot written by cmd/snapshot.
	// A fresh snapshot is preferred over re-parsing the bundle; a stale or
	// missing one falls back to the bundle.
	SnapshotPath string
	Logger       *slog.Logger
}

// NewLoader creates a Loader. No I/O happens until the first Get.
func NewLoader(opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		bundlePath:   opts.BundlePath,
		snapshotPath: opts.SnapshotPath,
		logger:       logger.With("component", "loader"),
	}
}

// Get returns the shared knowledge base, loading it on first use.
func (l *Loader) Get() (*KnowledgeBase, error) {
	l.once.Do(l.load)
	return l.kb, l.err
}

func (l *Loader) load() {
	start := time.Now()
	l.logger.Info("loading ATT&CK dataset", "bundle", l.bundlePath)

	ds, err := l.openDataset()
	if err != nil {
		l.err = err
		l.logger.Error("dataset load failed", "error", err)
		return
	}

	kb, err := NewKnowledgeBase(ds)
	if err != nil {
		l.err = err
		l.logger.Error("knowledge base build failed", "error", err)
		return
	}

	l.kb = kb
	l.logger.Info("ATT&CK dataset loaded",
		"techniques", kb.TechniqueCount(),
		"tactics", len(kb.Tactics()),
		"duration", time.Since(start))
}

func (l *Loader) openDataset() (*Dataset, error) {
	if l.snapshotPath != "" {
		ds, err := ReadSnapshot(l.snapshotPath, l.bundlePath)
		if err == nil {
			l.logger.Info("loaded dataset from snapshot", "snapshot", l.snapshotPath)
			return ds, nil
		}
		l.logger.Warn("snapshot unusable, parsing bundle", "snapshot", l.snapshotPath, "reason", err)
	}
	return LoadBundleFile(l.bundlePath)
}
