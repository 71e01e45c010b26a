package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/domain"
	"github.com/idusortus/quotes-service/internal/mocks"
)

var errConnReset = errors.New("read tcp 10.0.0.4:5432: connection reset by peer")

func newTestQuoteService(t *testing.T) (*QuoteService, *mocks.MockQuoteRepository) {
	t.Helper()

	repo := mocks.NewMockQuoteRepository(t)
	tx := mocks.NewMockTransactor(t)
	tx.EXPECT().WithinTx(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).Maybe()

	svc := NewQuoteService(QuoteServiceConfig{
		Quotes: repo,
		Tx:     tx,
		Logger: discardLogger(),
	})

	return svc, repo
}

func sampleQuote() *domain.Quote {
	return &domain.Quote{
		ID:       7,
		Author:   "Epictetus",
		Content:  "No man is free who is not master of himself.",
		Category: "stoic",
		Likes:    3,
	}
}

func TestNewQuoteService_PanicsWithoutRepository(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{Logger: slog.Default()})
	})
}

func TestNewQuoteService_Defaults(t *testing.T) {
	svc := NewQuoteService(QuoteServiceConfig{Quotes: mocks.NewMockQuoteRepository(t)})

	require.NotNil(t, svc)
	assert.NotNil(t, svc.logger)
	assert.IsType(t, inlineTx{}, svc.tx)
}

func TestQuoteService_GetByID(t *testing.T) {
	tests := []struct {
		name      string
		id        int
		setupMock func(*mocks.MockQuoteRepository)
		wantQuote *QuoteResponse
		wantCode  string
		wantMsg   string
		wantFault bool
	}{
		{
			name: "found",
			id:   7,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(sampleQuote(), nil)
			},
			wantQuote: &QuoteResponse{
				QuoteID:  7,
				Author:   "Epictetus",
				Content:  "No man is free who is not master of himself.",
				Category: "stoic",
				Likes:    3,
			},
		},
		{
			name:      "zero id rejected without storage",
			id:        0,
			setupMock: func(*mocks.MockQuoteRepository) {},
			wantCode:  result.CodeInvalidID,
			wantMsg:   "ID must be greater than 0.",
		},
		{
			name:      "negative id rejected without storage",
			id:        -4,
			setupMock: func(*mocks.MockQuoteRepository) {},
			wantCode:  result.CodeInvalidID,
			wantMsg:   "ID must be greater than 0.",
		},
		{
			name: "not found",
			id:   99,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 99).Return(nil, domain.NewNotFoundError("quote", "99"))
			},
			wantCode: result.CodeQuoteNotFound,
			wantMsg:  "Quote with ID '99' does not exist.",
		},
		{
			name: "storage fault is returned as error",
			id:   7,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(nil, errConnReset)
			},
			wantFault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestQuoteService(t)
			tt.setupMock(repo)

			res, err := svc.GetByID(context.Background(), tt.id)

			if tt.wantFault {
				require.ErrorIs(t, err, errConnReset)
				return
			}

			require.NoError(t, err)

			if tt.wantQuote != nil {
				require.True(t, res.IsSuccess())
				assert.Equal(t, *tt.wantQuote, res.Value())
				return
			}

			first, ok := res.FirstError()
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, first.Code)
			assert.Equal(t, tt.wantMsg, first.Message)
		})
	}
}

func TestQuoteService_GetAll(t *testing.T) {
	t.Run("applies paging and sorting", func(t *testing.T) {
		svc, repo := newTestQuoteService(t)

		repo.EXPECT().Count(mock.Anything, domain.QuoteFilter{Category: "stoic"}).Return(int64(23), nil)
		repo.EXPECT().List(mock.Anything, domain.QuoteQuery{
			Filter:     domain.QuoteFilter{Category: "stoic"},
			SortBy:     domain.SortByLikes,
			Descending: true,
			Offset:     10,
			Limit:      10,
		}).Return([]domain.Quote{*sampleQuote()}, nil)

		query := DefaultListQuotesQuery()
		query.PageNumber = 2
		query.Category = "stoic"
		query.SortBy = "likes"
		query.SortOrder = "desc"

		res, err := svc.GetAll(context.Background(), query)

		require.NoError(t, err)
		require.True(t, res.IsSuccess())

		page := res.Value()
		assert.Equal(t, 2, page.PageNumber)
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, int64(23), page.TotalCount)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Items, 1)
		assert.Equal(t, 7, page.Items[0].QuoteID)
	})

	t.Run("empty sort falls back to id ascending", func(t *testing.T) {
		svc, repo := newTestQuoteService(t)

		repo.EXPECT().Count(mock.Anything, domain.QuoteFilter{}).Return(int64(0), nil)
		repo.EXPECT().List(mock.Anything, domain.QuoteQuery{SortBy: domain.SortByID, Limit: DefaultPageSize}).
			Return(nil, nil)

		res, err := svc.GetAll(context.Background(), ListQuotesQuery{PageNumber: 1, PageSize: DefaultPageSize})

		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		assert.Empty(t, res.Value().Items)
		assert.NotNil(t, res.Value().Items)
		assert.Zero(t, res.Value().TotalPages)
	})

	t.Run("invalid page size is a failure", func(t *testing.T) {
		svc, _ := newTestQuoteService(t)

		query := DefaultListQuotesQuery()
		query.PageSize = 0

		res, err := svc.GetAll(context.Background(), query)

		require.NoError(t, err)
		first, ok := res.FirstError()
		require.True(t, ok)
		assert.Equal(t, result.CodeValidationFailed, first.Code)
		assert.Equal(t, "pageSize", first.Field)
	})

	t.Run("count fault is returned as error", func(t *testing.T) {
		svc, repo := newTestQuoteService(t)

		repo.EXPECT().Count(mock.Anything, mock.Anything).Return(int64(0), errConnReset)
		repo.EXPECT().List(mock.Anything, mock.Anything).Return(nil, nil).Maybe()

		_, err := svc.GetAll(context.Background(), DefaultListQuotesQuery())

		require.ErrorIs(t, err, errConnReset)
	})
}

func TestQuoteService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       QuoteCreateRequest
		setupMock func(*mocks.MockQuoteRepository)
		wantCode  string
		wantFault bool
	}{
		{
			name: "trims and stores",
			req:  QuoteCreateRequest{Author: "  Seneca ", Content: " Luck is what happens when preparation meets opportunity. "},
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Add(mock.Anything, mock.MatchedBy(func(q *domain.Quote) bool {
					return q.Author == "Seneca" && q.Likes == 0 && q.ID == 0
				})).RunAndReturn(func(_ context.Context, q *domain.Quote) (int64, error) {
					q.ID = 12
					return 1, nil
				})
			},
		},
		{
			name:      "invalid request never reaches storage",
			req:       QuoteCreateRequest{Author: "", Content: "x"},
			setupMock: func(*mocks.MockQuoteRepository) {},
			wantCode:  result.CodeValidationFailed,
		},
		{
			name: "duplicate becomes conflict",
			req:  QuoteCreateRequest{Author: "Seneca", Content: "dup"},
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Add(mock.Anything, mock.Anything).
					Return(int64(0), domain.NewDuplicateError("quote", "author and content already exist"))
			},
			wantCode: result.CodeConflict,
		},
		{
			name: "fault is returned",
			req:  QuoteCreateRequest{Author: "Seneca", Content: "c"},
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Add(mock.Anything, mock.Anything).Return(int64(0), errConnReset)
			},
			wantFault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestQuoteService(t)
			tt.setupMock(repo)

			res, err := svc.Create(context.Background(), tt.req)

			if tt.wantFault {
				require.ErrorIs(t, err, errConnReset)
				return
			}

			require.NoError(t, err)

			if tt.wantCode == "" {
				require.True(t, res.IsSuccess())
				assert.Equal(t, 12, res.Value().QuoteID)
				assert.Equal(t, "Seneca", res.Value().Author)
				return
			}

			first, ok := res.FirstError()
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, first.Code)
		})
	}
}

func TestQuoteService_Update(t *testing.T) {
	req := QuoteUpdateRequest{Author: "Epictetus", Content: "Wealth consists in having few wants.", Likes: 9}

	tests := []struct {
		name      string
		id        int
		req       QuoteUpdateRequest
		setupMock func(*mocks.MockQuoteRepository)
		wantCode  string
		wantField string
		wantFault bool
	}{
		{
			name: "applies changes",
			id:   7,
			req:  req,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(sampleQuote(), nil)
				m.EXPECT().Update(mock.Anything, mock.MatchedBy(func(q *domain.Quote) bool {
					return q.ID == 7 && q.Likes == 9 && q.Category == ""
				})).Return(int64(1), nil)
			},
		},
		{
			name:      "bad id checked before body",
			id:        0,
			req:       QuoteUpdateRequest{Likes: -1},
			setupMock: func(*mocks.MockQuoteRepository) {},
			wantCode:  result.CodeInvalidID,
			wantField: "id",
		},
		{
			name:      "negative likes",
			id:        7,
			req:       QuoteUpdateRequest{Author: "a", Content: "c", Likes: -1},
			setupMock: func(*mocks.MockQuoteRepository) {},
			wantCode:  result.CodeValidationFailed,
			wantField: "likes",
		},
		{
			name: "missing quote",
			id:   8,
			req:  req,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 8).Return(nil, domain.NewNotFoundError("quote", "8"))
			},
			wantCode: result.CodeQuoteNotFound,
		},
		{
			name: "row vanished between load and save",
			id:   7,
			req:  req,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(sampleQuote(), nil)
				m.EXPECT().Update(mock.Anything, mock.Anything).Return(int64(0), nil)
			},
			wantCode: result.CodeQuoteNotFound,
		},
		{
			name: "duplicate text",
			id:   7,
			req:  req,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(sampleQuote(), nil)
				m.EXPECT().Update(mock.Anything, mock.Anything).
					Return(int64(0), domain.NewDuplicateError("quote", "duplicate"))
			},
			wantCode: result.CodeConflict,
		},
		{
			name: "fault inside transaction",
			id:   7,
			req:  req,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(nil, errConnReset)
			},
			wantFault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestQuoteService(t)
			tt.setupMock(repo)

			res, err := svc.Update(context.Background(), tt.id, tt.req)

			if tt.wantFault {
				require.ErrorIs(t, err, errConnReset)
				return
			}

			require.NoError(t, err)

			if tt.wantCode == "" {
				require.True(t, res.IsSuccess())
				assert.Equal(t, 9, res.Value().Likes)
				return
			}

			first, ok := res.FirstError()
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, first.Code)

			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, first.Field)
			}
		})
	}
}

func TestQuoteService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		id        int
		setupMock func(*mocks.MockQuoteRepository)
		wantCode  string
		wantMsg   string
		wantFault bool
	}{
		{
			name: "deletes",
			id:   7,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(sampleQuote(), nil)
				m.EXPECT().Delete(mock.Anything, mock.Anything).Return(int64(1), nil)
			},
		},
		{
			name:      "invalid id",
			id:        -1,
			setupMock: func(*mocks.MockQuoteRepository) {},
			wantCode:  result.CodeInvalidID,
			wantMsg:   "ID must be greater than 0.",
		},
		{
			name: "not found",
			id:   5,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 5).Return(nil, domain.NewNotFoundError("quote", "5"))
			},
			wantCode: result.CodeQuoteNotFound,
			wantMsg:  "Quote with ID '5' does not exist.",
		},
		{
			name: "referenced by another record",
			id:   7,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(sampleQuote(), nil)
				m.EXPECT().Delete(mock.Anything, mock.Anything).
					Return(int64(0), domain.NewReferenceError("quote", "still referenced"))
			},
			wantCode: result.CodeDependencyExists,
			wantMsg:  "Quote with ID '7' cannot be deleted because other records depend on it.",
		},
		{
			name: "fault",
			id:   7,
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().GetByID(mock.Anything, 7).Return(sampleQuote(), nil)
				m.EXPECT().Delete(mock.Anything, mock.Anything).Return(int64(0), errConnReset)
			},
			wantFault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestQuoteService(t)
			tt.setupMock(repo)

			res, err := svc.Delete(context.Background(), tt.id)

			if tt.wantFault {
				require.ErrorIs(t, err, errConnReset)
				return
			}

			require.NoError(t, err)

			if tt.wantCode == "" {
				assert.True(t, res.IsSuccess())
				return
			}

			first, ok := res.FirstError()
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, first.Code)
			assert.Equal(t, tt.wantMsg, first.Message)
		})
	}
}
