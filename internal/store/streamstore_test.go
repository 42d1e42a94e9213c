package store_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"raiap/internal/domain"
	"raiap/internal/store"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMemoryStreams(t *testing.T) {
	suite.Run(t, &StreamStoreSuite{open: func(*testing.T) domain.StreamStore {
		return store.NewMemoryStreams()
	}})
}

func TestFileStreams(t *testing.T) {
	suite.Run(t, &StreamStoreSuite{open: func(t *testing.T) domain.StreamStore {
		return store.NewFileStreams(t.TempDir(), quietLogger())
	}})
}

func TestBadgerStreams(t *testing.T) {
	suite.Run(t, &StreamStoreSuite{open: func(t *testing.T) domain.StreamStore {
		b, err := store.OpenBadgerStreams(store.BadgerConfig{Path: t.TempDir(), Logger: quietLogger()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close() })
		return b
	}})
}

func TestFileStreams_RejectsPathEscape(t *testing.T) {
	fs := store.NewFileStreams(t.TempDir(), quietLogger())
	_, err := fs.LoadStream(t.Context(), "../card")
	require.Error(t, err)
}
