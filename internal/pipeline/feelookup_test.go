package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/libops/payrecon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newFeeLookupMock(t *testing.T) (*FeeLookup, *MockLedgerClient) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := NewMockLedgerClient(ctrl)
	return NewFeeLookup(ledger), ledger
}

func TestAllFeesQueriesEveryStatus(t *testing.T) {
	lookup, ledger := newFeeLookupMock(t)

	ledger.EXPECT().GetFees(gomock.Any(), "U1", "ACTIVE").Return([]domain.Fee{{ID: "F1"}}, nil)
	ledger.EXPECT().GetFees(gomock.Any(), "U1", "CLOSED").Return([]domain.Fee{{ID: "F2"}}, nil)
	ledger.EXPECT().GetFees(gomock.Any(), "U1", "EXPORTED").Return(nil, nil)
	ledger.EXPECT().GetFees(gomock.Any(), "U1", "INDISPUTE").Return([]domain.Fee{{ID: "F3"}}, nil)

	fees, err := lookup.AllFees(context.Background(), "U1")
	require.NoError(t, err)
	assert.Len(t, fees, 3)
	assert.Contains(t, fees, "F1")
	assert.Contains(t, fees, "F2")
	assert.Contains(t, fees, "F3")
}

// A fee surfacing under two statuses must not appear twice.
func TestAllFeesDeduplicates(t *testing.T) {
	lookup, ledger := newFeeLookupMock(t)

	shared := domain.Fee{ID: "F1", Type: "OVERDUEFINE"}
	ledger.EXPECT().GetFees(gomock.Any(), "U1", "ACTIVE").Return([]domain.Fee{shared}, nil)
	ledger.EXPECT().GetFees(gomock.Any(), "U1", "CLOSED").Return([]domain.Fee{shared}, nil)
	ledger.EXPECT().GetFees(gomock.Any(), "U1", "EXPORTED").Return(nil, nil)
	ledger.EXPECT().GetFees(gomock.Any(), "U1", "INDISPUTE").Return(nil, nil)

	fees, err := lookup.AllFees(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "OVERDUEFINE", fees["F1"].Type)
}

func TestAllFeesPropagatesErrors(t *testing.T) {
	lookup, ledger := newFeeLookupMock(t)

	ledger.EXPECT().GetFees(gomock.Any(), "U1", gomock.Any()).
		Return(nil, errors.New("ledger unavailable")).
		MinTimes(1).MaxTimes(4)

	_, err := lookup.AllFees(context.Background(), "U1")
	assert.ErrorContains(t, err, "ledger unavailable")
}
