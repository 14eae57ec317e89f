//go:build unit

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/handler/api"
	resdto "pride-notify/internal/handler/dto/response"
	"pride-notify/internal/handler/middleware"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/dispatch"
	dispatchmock "pride-notify/internal/usecase/dispatch/mock"
	"pride-notify/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type fakeDispatcher struct {
	dispatch func(ctx context.Context, category string, mode dispatch.RecordMode) (*dispatch.BatchResult, error)
	runs     []string
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, category string, mode dispatch.RecordMode) (*dispatch.BatchResult, error) {
	return f.dispatch(ctx, category, mode)
}

func (f *fakeDispatcher) Run(_ context.Context, category string) (*dispatch.BatchResult, error) {
	f.runs = append(f.runs, category)
	return &dispatch.BatchResult{}, nil
}

type DispatchHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockScheduler *dispatchmock.MockScheduler
	dispatcher    *fakeDispatcher
}

func (s *DispatchHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler())

	s.mockCtrl = gomock.NewController(s.T())
	s.mockScheduler = dispatchmock.NewMockScheduler(s.mockCtrl)
	s.dispatcher = &fakeDispatcher{}
	h := api.NewDispatchHandler(s.dispatcher, s.mockScheduler, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.router.POST("/internal/dispatch/:category", h.Trigger)
}

func TestDispatchHandlerSuite(t *testing.T) {
	suite.Run(t, new(DispatchHandlerTestSuite))
}

func (s *DispatchHandlerTestSuite) TestTrigger_Synchronous() {
	started := time.Date(2024, 3, 1, 6, 50, 0, 0, time.UTC)
	s.dispatcher.dispatch = func(ctx context.Context, category string, mode dispatch.RecordMode) (*dispatch.BatchResult, error) {
		s.Equal("loans_due", category)
		s.Equal(dispatch.RecordBulk, mode)
		return &dispatch.BatchResult{
			Category:   notification.CategoryLoansDue,
			RunID:      "01HRUN",
			Attempt:    1,
			State:      dispatch.StateDone,
			Fetched:    3,
			Rejections: []dispatch.Rejection{{Index: 2, Fields: []string{"SOMETHING_ELSE"}}},
			StartedAt:  started,
			FinishedAt: started.Add(1500 * time.Millisecond),
		}, nil
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/dispatch/loans_due", nil, "")

	var res resdto.BatchResultResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
	s.Equal("done", res.State)
	s.Equal(3, res.Fetched)
	s.Equal(int64(1500), res.DurationMillis)
	s.Equal([]resdto.RejectionResponse{{Index: 2, Fields: []string{"SOMETHING_ELSE"}}}, res.Rejected)
}

func (s *DispatchHandlerTestSuite) TestTrigger_Scheduled() {
	var task func(context.Context)
	s.mockScheduler.EXPECT().After(time.Duration(0), gomock.Any()).
		Do(func(_ time.Duration, fn func(context.Context)) { task = fn })

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/dispatch/birthdays?schedule=true", nil, "")

	var res resdto.ScheduledDispatchResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusAccepted, &res)
	s.Equal("birthdays", res.Category)

	s.Require().NotNil(task)
	task(context.Background())
	s.Equal([]string{"birthdays"}, s.dispatcher.runs)
}

func (s *DispatchHandlerTestSuite) TestTrigger_Errors() {
	tests := []struct {
		name       string
		url        string
		result     *dispatch.BatchResult
		err        error
		expectCode int
		expectMsg  string
	}{
		{
			name:       "unknown category",
			url:        "/internal/dispatch/fax",
			expectCode: http.StatusNotFound,
			expectMsg:  "Unknown category",
		},
		{
			name:       "already running",
			url:        "/internal/dispatch/loans_due",
			result:     &dispatch.BatchResult{State: dispatch.StateFailed},
			err:        errs.Mark(errs.New("category loans_due"), errs.ErrBatchInProgress),
			expectCode: http.StatusConflict,
			expectMsg:  "already running",
		},
		{
			name:       "no result",
			url:        "/internal/dispatch/loans_due",
			err:        errors.New("boom"),
			expectCode: http.StatusInternalServerError,
			expectMsg:  "Dispatch failed",
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.dispatcher.dispatch = func(context.Context, string, dispatch.RecordMode) (*dispatch.BatchResult, error) {
				return tt.result, tt.err
			}
			w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, tt.url, nil, "")
			httptest.AssertErrorResponse(s.T(), w, tt.expectCode, tt.expectMsg)
		})
	}
}

func (s *DispatchHandlerTestSuite) TestTrigger_BatchFailureReturnsResult() {
	s.dispatcher.dispatch = func(context.Context, string, dispatch.RecordMode) (*dispatch.BatchResult, error) {
		err := notification.NewSourceError(notification.KindSourceEmpty, notification.CategoryEscrow, 0, nil)
		return &dispatch.BatchResult{Category: notification.CategoryEscrow, State: dispatch.StateFailed, Err: err}, err
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/dispatch/escrow", nil, "")

	s.Equal(http.StatusBadGateway, w.Code)
	s.Contains(w.Body.String(), `"state":"failed"`)
	s.Contains(w.Body.String(), `"error"`)
}
