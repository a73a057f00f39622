package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mycok/uBasket/service"
	"github.com/mycok/uBasket/service/dashboard"
	"github.com/mycok/uBasket/service/loader"
	"github.com/mycok/uBasket/session"
)

const (
	appName = "uBasket"
	appSHA  = "compiled-and-deployed-at"
)

func main() {
	host, _ := os.Hostname()
	// Instantiate a root logger that will be passed to all services.
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"SHA":  appSHA,
		"host": host,
	})

	svcGroup, err := configureServices(logger)
	if err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")

		os.Exit(1)
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Launch a separate process to listen and respond to os signals
	// and trigger a graceful shutdown.
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			// Cancel context, this signals all services to return since they all
			// share this same context.
			cancelFn()
		case <-ctx.Done():
		}
	}()

	if err := svcGroup.Execute(ctx); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")

		os.Exit(1)
	}

	// Shutdown due to context cancellation.
	logger.Info("shutdown complete")
}

func configureServices(logger *logrus.Entry) (service.Group, error) {
	var (
		loaderConfig    loader.Config
		dashboardConfig dashboard.Config
	)

	flag.StringVar(
		&loaderConfig.DatasetPath, "dataset", "",
		"Path to the retail transactions CSV file",
	)
	flag.StringVar(
		&loaderConfig.Schema.CustomerColumn, "customer-column", "",
		"Dataset column holding the customer identifier [defaults to Member_number]",
	)
	flag.StringVar(
		&loaderConfig.Schema.DateColumn, "date-column", "",
		"Dataset column holding the purchase date [defaults to Date]",
	)
	flag.StringVar(
		&loaderConfig.Schema.ItemColumn, "item-column", "",
		"Dataset column holding the item label [defaults to itemDescription]",
	)
	flag.DurationVar(
		&loaderConfig.RescanInterval, "rescan-interval",
		5*time.Minute, "Time between subsequent dataset rescans",
	)
	flag.BoolVar(
		&loaderConfig.DisableWatch, "disable-watch", false,
		"Disable filesystem change notifications for the dataset file",
	)

	flag.StringVar(
		&dashboardConfig.ListenAddr, "listen-addr",
		":8080", "Address to listen on for incoming dashboard requests",
	)
	flag.IntVar(
		&dashboardConfig.NumOfRecommendations, "recommendations-per-item",
		10, "Number of recommendations displayed per item",
	)
	flag.IntVar(
		&dashboardConfig.NumOfResultsPerPage, "search-results-per-page",
		10, "Number of item search results displayed per page",
	)
	flag.IntVar(
		&dashboardConfig.NumOfPairsPerPage, "pairs-per-page",
		25, "Number of frequent pairs displayed per page",
	)
	flag.IntVar(
		&dashboardConfig.MaxRelatedItems, "max-related-items",
		50, "Maximum number of related items displayed for a traversal",
	)

	flag.Parse()

	// All services share a single session store. The loader publishes
	// dataset snapshots to it and the dashboard reads them from it.
	sessions := session.NewStore()

	var svc service.Service
	var svcGrp service.Group
	var err error

	loaderConfig.Sessions = sessions
	loaderConfig.Logger = logger.WithField("service", "dataset-loader")
	if svc, err = loader.New(loaderConfig); err == nil {
		svcGrp = append(svcGrp, svc)
	} else {
		return nil, err
	}

	dashboardConfig.Sessions = sessions
	dashboardConfig.Logger = logger.WithField("service", "dashboard")
	if svc, err = dashboard.New(dashboardConfig); err == nil {
		svcGrp = append(svcGrp, svc)
	} else {
		return nil, err
	}

	return svcGrp, nil
}
