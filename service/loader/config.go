package loader

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uBasket/dataset"
	"github.com/mycok/uBasket/itemindex/index"
	"github.com/mycok/uBasket/itemindex/store/memory"
	"github.com/mycok/uBasket/session"
)

// SessionAPI defines a minimum set of API methods for publishing dataset
// snapshots to the rest of the application.
type SessionAPI interface {
	// Swap installs next as the current snapshot and returns the snapshot
	// it replaced or nil if no build had completed before.
	Swap(next *session.Snapshot) *session.Snapshot
}

// Config defines configurations for the dataset-loading service.
type Config struct {
	// Path to the transactions dataset file.
	DatasetPath string

	// Column layout of the dataset file. Unset column names fall back
	// to the dataset package defaults.
	Schema dataset.Schema

	// API for publishing completed snapshots.
	Sessions SessionAPI

	// Factory for the item index populated by each build. If not
	// specified, an in-memory bleve index will be used instead.
	NewIndexer func() (index.Indexer, error)

	// The duration between subsequent dataset rescans.
	RescanInterval time.Duration

	// Disables filesystem change notifications for the dataset file.
	// Periodic rescans still happen at RescanInterval.
	DisableWatch bool

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.DatasetPath == "" {
		err = multierror.Append(err, fmt.Errorf("dataset path not provided"))
	}

	if config.Sessions == nil {
		err = multierror.Append(err, fmt.Errorf("session API not provided"))
	}

	if config.NewIndexer == nil {
		config.NewIndexer = func() (index.Indexer, error) {
			return memory.NewInMemoryIndex()
		}
	}

	if config.RescanInterval == 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for rescan interval"))
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
