package dashboard

import (
	"fmt"
	"html/template"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uBasket/session"
)

const (
	defaultNumOfRecommendations = 10
	defaultNumOfResultsPerPage  = 10
	defaultNumOfPairsPerPage    = 25
	defaultMaxRelatedItems      = 50
)

// SessionAPI defines a minimum set of API methods for retrieving the current
// dataset snapshot. The snapshot carries the graph and item index of the
// build it belongs to, so every query the dashboard answers is consistent
// with a single build.
type SessionAPI interface {
	// Current returns the latest snapshot or an error if no dataset
	// build has completed yet.
	Current() (*session.Snapshot, error)
}

// Config defines configurations for the dashboard service.
type Config struct {
	// API for retrieving the current dataset snapshot.
	Sessions SessionAPI

	// Address to listen on for incoming requests.
	ListenAddr string

	// Number of recommendations to display per item. If not specified, a
	// default value of 10 will be used instead.
	NumOfRecommendations int

	// Number of item search results per page. If not specified, a default
	// value of 10 will be used instead.
	NumOfResultsPerPage int

	// Number of frequent pairs per page. If not specified, a default
	// value of 25 will be used instead.
	NumOfPairsPerPage int

	// Maximum number of related items displayed for a traversal. If not
	// specified, a default value of 50 will be used instead.
	MaxRelatedItems int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry

	// Cache for all application templates.
	TemplateCache map[string]*template.Template
}

func (config *Config) validate() error {
	var err error

	if config.Sessions == nil {
		err = multierror.Append(err, fmt.Errorf("session API not provided"))
	}

	if config.ListenAddr == "" {
		err = multierror.Append(err, fmt.Errorf("listen address not provided"))
	}

	if config.NumOfRecommendations <= 0 {
		config.NumOfRecommendations = defaultNumOfRecommendations
	}

	if config.NumOfResultsPerPage <= 0 {
		config.NumOfResultsPerPage = defaultNumOfResultsPerPage
	}

	if config.NumOfPairsPerPage <= 0 {
		config.NumOfPairsPerPage = defaultNumOfPairsPerPage
	}

	if config.MaxRelatedItems <= 0 {
		config.MaxRelatedItems = defaultMaxRelatedItems
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
