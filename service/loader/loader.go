package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uBasket/basketgraph"
	"github.com/mycok/uBasket/dataset"
	"github.com/mycok/uBasket/itemindex/index"
	"github.com/mycok/uBasket/session"
)

// Service represents the dataset-loading service for the uBasket
// application. It satisfies the service.Service interface.
type Service struct {
	config Config

	// Modification time and size of the dataset at the last build
	// attempt. Rescans skip rebuilding when neither has changed.
	lastModTime time.Time
	lastSize    int64
}

// New creates and returns a fully configured dataset-loading service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("loader service: config validation failed: %w", err)
	}

	return &Service{config: config}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "dataset-loader" }

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
//
// The initial build runs immediately. Build failures are never fatal:
// the previous snapshot, if any, stays live and the next change event
// or rescan retries the build.
func (svc *Service) Run(ctx context.Context) error {
	svc.config.Logger.WithFields(logrus.Fields{
		"dataset":         svc.config.DatasetPath,
		"rescan_interval": svc.config.RescanInterval.String(),
	}).Info("started service")
	defer svc.config.Logger.Info("stopped service")

	// Receives from nil channels block forever, so leaving these unset
	// when watching is disabled disables their select cases.
	var (
		watchEvents <-chan fsnotify.Event
		watchErrs   <-chan error
	)

	if !svc.config.DisableWatch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch dataset: %w", err)
		}
		defer func() { _ = watcher.Close() }()

		// Watch the containing directory instead of the file itself.
		// Editors and atomic renames replace the file inode, which
		// silently detaches a file-level watch.
		if err := watcher.Add(filepath.Dir(svc.config.DatasetPath)); err != nil {
			return fmt.Errorf("watch dataset: %w", err)
		}

		watchEvents = watcher.Events
		watchErrs = watcher.Errors
	}

	svc.reload("startup")

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-svc.config.Clock.After(svc.config.RescanInterval):
			modTime, size, err := svc.statDataset()
			if err != nil {
				svc.config.Logger.WithField("err", err).Warn("dataset rescan failed")

				continue
			}

			// Skip the rebuild unless the dataset changed since the
			// last build attempt.
			if modTime.Equal(svc.lastModTime) && size == svc.lastSize {
				continue
			}

			svc.reload("rescan")

		case event, ok := <-watchEvents:
			if !ok {
				watchEvents = nil

				continue
			}

			if !svc.isDatasetEvent(event) {
				continue
			}

			svc.reload("watch")

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil

				continue
			}

			svc.config.Logger.WithField("err", err).Warn("dataset watcher reported an error")
		}
	}
}

// reload attempts a full dataset build and logs instead of failing when
// the build reports an error.
func (svc *Service) reload(trigger string) {
	if modTime, size, err := svc.statDataset(); err == nil {
		svc.lastModTime, svc.lastSize = modTime, size
	}

	if err := svc.rebuild(trigger); err != nil {
		svc.config.Logger.WithFields(logrus.Fields{
			"trigger": trigger,
			"err":     err,
		}).Warn("dataset build failed, previous snapshot stays live")
	}
}

// rebuild constructs a brand new graph, index and stats from the dataset
// file and swaps them in as the current snapshot. Nothing is swapped when
// any build step fails.
func (svc *Service) rebuild(trigger string) error {
	svc.config.Logger.WithField("trigger", trigger).Info("started dataset build")

	startedAt := svc.config.Clock.Now()

	g, stats, err := dataset.BuildGraphFromFile(svc.config.DatasetPath, svc.config.Schema)
	if err != nil {
		return err
	}
	graphBuildDuration := svc.config.Clock.Now().Sub(startedAt)

	tick := svc.config.Clock.Now()

	idx, err := svc.config.NewIndexer()
	if err != nil {
		return err
	}

	if err := indexItems(g, idx); err != nil {
		_ = idx.Close()

		return err
	}
	indexPopulationDuration := svc.config.Clock.Now().Sub(tick)

	snapshot := &session.Snapshot{
		BuildID: uuid.New(),
		Source:  svc.config.DatasetPath,
		Graph:   g,
		Index:   idx,
		Stats:   stats,
		BuiltAt: svc.config.Clock.Now(),
	}

	// Readers holding the replaced snapshot finished their queries against
	// an in-memory index, so closing it here only releases its resources.
	if prev := svc.config.Sessions.Swap(snapshot); prev != nil && prev.Index != nil {
		_ = prev.Index.Close()
	}

	svc.config.Logger.WithFields(logrus.Fields{
		"build_id":                  snapshot.BuildID,
		"records_read":              stats.RecordsRead,
		"records_skipped":           stats.RecordsSkipped,
		"baskets":                   stats.Baskets,
		"items":                     g.NumItems(),
		"co_purchase_pairs":         g.NumEdges(),
		"graph_build_duration":      graphBuildDuration,
		"index_population_duration": indexPopulationDuration,
		"total_processing_time":     svc.config.Clock.Now().Sub(startedAt),
	}).Info("completed dataset build")

	return nil
}

// statDataset reports the dataset file's current modification time and size.
func (svc *Service) statDataset() (time.Time, int64, error) {
	info, err := os.Stat(svc.config.DatasetPath)
	if err != nil {
		return time.Time{}, 0, err
	}

	return info.ModTime(), info.Size(), nil
}

// isDatasetEvent reports whether the watch event describes a content
// change to the dataset file.
func (svc *Service) isDatasetEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(svc.config.DatasetPath) {
		return false
	}

	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// indexItems catalogues every graph item into the provided index so the
// dashboard can answer label searches.
func indexItems(g *basketgraph.Graph, idx index.Indexer) error {
	for _, label := range g.Items() {
		neighbours := g.Neighbours(label)

		totalWeight := 0
		for _, weight := range neighbours {
			totalWeight += weight
		}

		doc := &index.Document{
			Label:       label,
			Degree:      len(neighbours),
			TotalWeight: totalWeight,
		}

		if err := idx.Index(doc); err != nil {
			return fmt.Errorf("index items: %w", err)
		}
	}

	return nil
}
