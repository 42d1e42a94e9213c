package app

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"raiap/internal/domain"
	"raiap/internal/platform/metrics"
	identitysvc "raiap/internal/services/identity"
	streamsvc "raiap/internal/services/stream"
	"raiap/internal/store"
)

// App is the dependency graph commands run against.
type App struct {
	Config   Config
	Log      *logrus.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Keystore *store.Keystore
	Streams  domain.StreamStore
	Identity *identitysvc.Service
	Stream   *streamsvc.Service

	closers []func() error
}

// Close releases store connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
