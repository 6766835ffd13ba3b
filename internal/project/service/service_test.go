package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ProjectStore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"landing/internal/project/metrics"
	"landing/internal/project/models"
	"landing/internal/project/service/mocks"
	dErrors "landing/pkg/domain-errors"
	"landing/pkg/platform/sentinel"
	"landing/pkg/requestcontext"
)

type ProjectServiceSuite struct {
	suite.Suite
	store   *mocks.MockProjectStore
	metrics *metrics.Metrics
	svc     *Service
	ctx     context.Context
	now     time.Time
}

func TestProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceSuite))
}

func (s *ProjectServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	s.store = mocks.NewMockProjectStore(ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func int64Ptr(v int64) *int64 { return &v }

func (s *ProjectServiceSuite) TestList() {
	s.Run("empty store yields empty slice", func() {
		s.store.EXPECT().List(gomock.Any()).Return(nil, nil)
		list, err := s.svc.List(s.ctx)
		s.Require().NoError(err)
		s.NotNil(list)
		s.Empty(list)
	})

	s.Run("store order is preserved", func() {
		want := []*models.Project{{ID: "2", Title: "new"}, {ID: "1", Title: "old"}}
		s.store.EXPECT().List(gomock.Any()).Return(want, nil)
		list, err := s.svc.List(s.ctx)
		s.Require().NoError(err)
		s.Equal(want, list)
	})

	s.Run("read failure is a persistence error with no results", func() {
		s.store.EXPECT().List(gomock.Any()).Return([]*models.Project{{ID: "partial"}}, errors.New("timeout"))
		list, err := s.svc.List(s.ctx)
		s.Nil(list)
		s.True(dErrors.HasCode(err, dErrors.CodePersistence))
		de, _ := dErrors.As(err)
		s.Equal("Failed to fetch projects", de.Message)
	})
}

func (s *ProjectServiceSuite) TestGet() {
	s.store.EXPECT().Get(gomock.Any(), "missing").Return(nil, sentinel.ErrNotFound)
	_, err := s.svc.Get(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.store.EXPECT().Get(gomock.Any(), "boom").Return(nil, errors.New("network"))
	_, err = s.svc.Get(s.ctx, "boom")
	s.True(dErrors.HasCode(err, dErrors.CodePersistence))

	s.store.EXPECT().Get(gomock.Any(), "ok").Return(&models.Project{ID: "ok"}, nil)
	p, err := s.svc.Get(s.ctx, "ok")
	s.Require().NoError(err)
	s.Equal("ok", p.ID)
}

func (s *ProjectServiceSuite) TestCreate() {
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *models.Project) error {
			p.ID = "65f0c0ffee0000000000beef"
			return nil
		})

	p, err := s.svc.Create(s.ctx, models.CreateProjectRequest{
		Title:    " Park Residence ",
		Location: "Ramat Gan",
		Price:    int64Ptr(2750000),
		ImageURL: "https://cdn.example.com/park.jpg",
	})
	s.Require().NoError(err)
	s.Equal("65f0c0ffee0000000000beef", p.ID)
	s.Equal("Park Residence", p.Title)
	s.Equal(models.DefaultCurrency, p.Currency)
	s.Equal([]string{"https://cdn.example.com/park.jpg"}, p.Images)
	s.Equal(s.now, p.CreatedAt)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ProjectsCreated))
}

func (s *ProjectServiceSuite) TestCreate_Invalid() {
	// no store expectation: invalid input must not be written
	_, err := s.svc.Create(s.ctx, models.CreateProjectRequest{Title: "T", Location: "L", Price: int64Ptr(1)})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("images", dErrors.FieldOf(err))
}

func (s *ProjectServiceSuite) TestCreate_StoreFailure() {
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("write concern"))
	_, err := s.svc.Create(s.ctx, models.CreateProjectRequest{
		Title: "T", Location: "L", Price: int64Ptr(1), Images: []string{"https://img/1"},
	})
	s.True(dErrors.HasCode(err, dErrors.CodePersistence))
}
