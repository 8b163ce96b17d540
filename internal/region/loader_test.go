package region

//go:generate mockgen -source=loader.go -destination=mocks/mocks.go -package=mocks Source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idverify/internal/platform/metrics"
	"idverify/internal/region/mocks"
	"idverify/pkg/domain/residentid"
	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/platform/sentinel"
)

type LoaderSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	source  *mocks.MockSource
	holder  *Holder
	metrics *metrics.Metrics
	loader  *Loader
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func (s *LoaderSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockSource(s.ctrl)
	s.source.EXPECT().Name().Return("mock").AnyTimes()
	s.holder = NewHolder(nil)
	s.metrics = metrics.New(prometheus.NewRegistry())

	var err error
	s.loader, err = NewLoader(s.source, s.holder,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
}

func (s *LoaderSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *LoaderSuite) TestNewLoader() {
	s.Run("nil source returns error", func() {
		_, err := NewLoader(nil, s.holder)
		s.ErrorContains(err, "region source is required")
	})

	s.Run("nil holder returns error", func() {
		_, err := NewLoader(s.source, nil)
		s.ErrorContains(err, "region holder is required")
	})
}

func (s *LoaderSuite) TestReload() {
	ctx := context.Background()

	s.Run("publishes a new snapshot", func() {
		s.source.EXPECT().Load(gomock.Any()).Return(map[string]residentid.Region{
			"110101": beijing,
		}, nil)

		table, err := s.loader.Reload(ctx)
		s.Require().NoError(err)
		s.Equal(1, table.Len())
		s.Same(table, s.holder.Current())
		s.Equal("mock", table.Source())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RegionTableEntries))
	})

	s.Run("source failure keeps the previous snapshot", func() {
		before := s.holder.Current()
		s.source.EXPECT().Load(gomock.Any()).Return(nil, fmt.Errorf("dial: %w", sentinel.ErrUnavailable))

		_, err := s.loader.Reload(ctx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.Same(before, s.holder.Current())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RegionTableReloads.WithLabelValues("mock", "failure")))
	})

	s.Run("other source errors are internal", func() {
		s.source.EXPECT().Load(gomock.Any()).Return(nil, errors.New("boom"))

		_, err := s.loader.Reload(ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("malformed table is rejected", func() {
		before := s.holder.Current()
		s.source.EXPECT().Load(gomock.Any()).Return(map[string]residentid.Region{
			"1101": beijing,
		}, nil)

		_, err := s.loader.Reload(ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Same(before, s.holder.Current())
	})
}

func (s *LoaderSuite) TestStale() {
	ctx := context.Background()
	s.False(s.loader.Stale())

	s.source.EXPECT().Load(gomock.Any()).Return(nil, fmt.Errorf("dial: %w", sentinel.ErrUnavailable)).Times(DefaultStaleAfter)
	for i := 0; i < DefaultStaleAfter; i++ {
		_, _ = s.loader.Reload(ctx)
	}
	s.True(s.loader.Stale())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RegionTableStale))

	s.source.EXPECT().Load(gomock.Any()).Return(map[string]residentid.Region{"110101": beijing}, nil)
	_, err := s.loader.Reload(ctx)
	s.Require().NoError(err)
	s.False(s.loader.Stale())
	s.Equal(0.0, testutil.ToFloat64(s.metrics.RegionTableStale))
}

func (s *LoaderSuite) TestRun() {
	s.Run("non-positive interval returns immediately", func() {
		done := make(chan struct{})
		go func() {
			s.loader.Run(context.Background(), 0)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			s.Fail("Run did not return")
		}
	})

	s.Run("reloads until cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		loaded := make(chan struct{}, 1)
		s.source.EXPECT().Load(gomock.Any()).DoAndReturn(func(context.Context) (map[string]residentid.Region, error) {
			select {
			case loaded <- struct{}{}:
			default:
			}
			return map[string]residentid.Region{"110101": beijing}, nil
		}).MinTimes(1)

		done := make(chan struct{})
		go func() {
			s.loader.Run(ctx, 5*time.Millisecond)
			close(done)
		}()

		select {
		case <-loaded:
		case <-time.After(time.Second):
			s.Fail("no reload happened")
		}
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			s.Fail("Run did not stop after cancel")
		}
		s.True(s.holder.Ready())
	})
}
