package handlers_test

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/stretchr/testify/mock"
)

var errTestStore = errors.New("connection reset by peer")

func postedEntry(id, number string) *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     id,
		JournalCode: "GJ",
		EntryNumber: number,
		EntryDate:   date("2024-06-01"),
		Status:      domain.EntryPosted,
		Lines: []domain.JournalLine{
			{LineNo: 1, AccountID: "acc-cash", Debit: 150000},
			{LineNo: 2, AccountID: "acc-rev", Credit: 150000},
		},
	}
}

func (suite *HandlerTestSuite) TestCreateDraft() {
	req := dto.CreateEntryRequest{
		JournalCode: "GJ",
		EntryDate:   "2024-06-01",
		Description: "Cash sale",
		Lines: []dto.JournalLineRequest{
			{AccountID: "acc-cash", Debit: 150000},
			{AccountID: "acc-rev", Credit: 150000},
		},
	}
	draft := postedEntry("e1", "")
	draft.Status = domain.EntryDraft
	suite.journals.On("CreateDraft", mock.Anything, req, testUserID).Return(draft, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/entries", `{
		"journalCode": "GJ",
		"entryDate": "2024-06-01",
		"description": "Cash sale",
		"lines": [
			{"accountID": "acc-cash", "debit": 150000},
			{"accountID": "acc-rev", "credit": 150000}
		]
	}`)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	suite.decode(w, &resp)
	suite.Equal(domain.EntryDraft, resp.Status)
	suite.Equal(domain.Money(150000), resp.TotalDebit)
	suite.Equal(resp.TotalDebit, resp.TotalCredit)
}

func (suite *HandlerTestSuite) TestPostEntry_ErrorClasses() {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "unbalanced",
			err:        apperrors.NewFieldError(apperrors.ErrUnbalancedEntry, "lines", "debits 1000 != credits 900"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not a draft",
			err:        fmt.Errorf("%w: entry e1 is posted", apperrors.ErrState),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "not found",
			err:        apperrors.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "posting halted",
			err:        fmt.Errorf("%w: posting halted: net debits sum to 0.01", apperrors.ErrConsistency),
			wantStatus: http.StatusInternalServerError,
			wantError:  apperrors.ErrConsistency.Error(),
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.journals.On("PostEntry", mock.Anything, "e1", testUserID).Return(nil, tc.err).Once()

			w := suite.do(http.MethodPost, "/api/v1/entries/e1/post", "")

			suite.Equal(tc.wantStatus, w.Code)
			if tc.wantError != "" {
				suite.Equal(tc.wantError, suite.errorBody(w).Error)
			}
		})
	}
}

func (suite *HandlerTestSuite) TestPostEntry_UnbalancedReportsField() {
	err := apperrors.NewFieldError(apperrors.ErrUnbalancedEntry, "lines", "debits 1000 != credits 900")
	suite.journals.On("PostEntry", mock.Anything, "e1", testUserID).Return(nil, err).Once()

	w := suite.do(http.MethodPost, "/api/v1/entries/e1/post", "")

	body := suite.errorBody(w)
	suite.Equal("lines", body.Field)
	suite.Contains(body.Error, "unbalanced entry")
}

func (suite *HandlerTestSuite) TestVoidEntry() {
	voided := postedEntry("e1", "GJ-2024-0001")
	voided.Status = domain.EntryVoided
	voided.ReversedByID = "e2"
	reversal := postedEntry("e2", "GJ-2024-0002")
	reversal.ReversalOfID = "e1"
	suite.journals.On("VoidEntry", mock.Anything, "e1", "duplicate", testUserID).Return(voided, reversal, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/entries/e1/void", `{"reason":"duplicate"}`)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.VoidEntryResponse
	suite.decode(w, &resp)
	suite.Equal(domain.EntryVoided, resp.Voided.Status)
	suite.Equal("e2", resp.Voided.ReversedByID)
	suite.Equal("e1", resp.Reversal.ReversalOfID)
}

func (suite *HandlerTestSuite) TestVoidEntry_RequiresReason() {
	w := suite.do(http.MethodPost, "/api/v1/entries/e1/void", `{}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.journals.AssertNotCalled(suite.T(), "VoidEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestDiscardDraft() {
	suite.journals.On("DiscardDraft", mock.Anything, "e1", testUserID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/entries/e1", "")

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestListEntries() {
	next := "token-2"
	suite.journals.On("ListEntries", mock.Anything, mock.MatchedBy(func(p dto.ListEntriesParams) bool {
		return p.JournalCode == "SJ" && p.Limit == 10 && p.Status == "posted"
	})).Return(&dto.ListEntriesResponse{
		Entries:   []dto.EntryResponse{dto.ToEntryResponse(postedEntry("e1", "SJ-2024-0001"))},
		NextToken: &next,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/entries?journalCode=SJ&status=posted&limit=10", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListEntriesResponse
	suite.decode(w, &resp)
	suite.Len(resp.Entries, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func (suite *HandlerTestSuite) TestListEntries_RejectsOversizedPage() {
	w := suite.do(http.MethodGet, "/api/v1/entries?limit=1000", "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.journals.AssertNotCalled(suite.T(), "ListEntries", mock.Anything, mock.Anything)
}
