package ledger

import (
	"context"
	"net/http"
	"testing"

	"github.com/libops/payrecon/pkg/clients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Client, *clients.MockHTTPClientI) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := clients.NewMockHTTPClientI(ctrl)
	lc := New("https://ledger.test/v1", "secret", client)
	return lc, client
}

func TestGetUser(t *testing.T) {
	lc, client := NewMock(t)

	respBody := []byte(`{"primary_id": "U1", "full_name": "Pat Smith", "first_name": "Pat"}`)
	client.EXPECT().
		Get("https://ledger.test/v1/users/U1?apikey=secret", gomock.Any()).
		DoAndReturn(func(url string, headers http.Header) (int, []byte, http.Header, error) {
			assert.Equal(t, "application/json", headers.Get("Accept"))
			return http.StatusOK, respBody, nil, nil
		})

	user, err := lc.GetUser(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, "U1", user.PrimaryID)
	assert.Equal(t, "Pat Smith", user.FullName)
}

func TestGetUserEscapesID(t *testing.T) {
	lc, client := NewMock(t)

	client.EXPECT().
		Get("https://ledger.test/v1/users/u%2F1?apikey=secret", gomock.Any()).
		Return(http.StatusOK, []byte(`{"primary_id": "u/1"}`), nil, nil)

	user, err := lc.GetUser(context.Background(), "u/1")
	require.NoError(t, err)
	assert.Equal(t, "u/1", user.PrimaryID)
}

func TestGetFees(t *testing.T) {
	lc, client := NewMock(t)

	respBody := []byte(`{
		"fee": [
			{
				"id": "F1",
				"type": {"value": "OVERDUEFINE", "desc": "Overdue fine"},
				"status": {"value": "CLOSED"},
				"user_primary_id": {"value": "U1"},
				"transaction": [
					{
						"type": {"value": "PAYMENT"},
						"amount": 12.5,
						"external_transaction_id": "T1",
						"transaction_time": "2024-02-01T10:31:00Z"
					}
				]
			}
		],
		"total_record_count": 1
	}`)
	client.EXPECT().
		Get("https://ledger.test/v1/users/U1/fees?apikey=secret&status=CLOSED", gomock.Any()).
		Return(http.StatusOK, respBody, nil, nil)

	fees, err := lc.GetFees(context.Background(), "U1", "CLOSED")
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "F1", fees[0].ID)
	assert.Equal(t, "OVERDUEFINE", fees[0].Type)
	assert.Equal(t, "U1", fees[0].OwnerID)
	require.Len(t, fees[0].Transactions, 1)
	assert.Equal(t, "T1", fees[0].Transactions[0].ExternalTransactionID)
	assert.Equal(t, 12.5, fees[0].Transactions[0].Amount)
}

func TestGetFeesEmpty(t *testing.T) {
	lc, client := NewMock(t)

	client.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(http.StatusOK, []byte(`{"total_record_count": 0}`), nil, nil)

	fees, err := lc.GetFees(context.Background(), "U1", "ACTIVE")
	require.NoError(t, err)
	assert.Empty(t, fees)
}

func TestGetFeesErrorStatus(t *testing.T) {
	lc, client := NewMock(t)

	client.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(http.StatusBadRequest, []byte(`{"errorList": {}}`), nil, nil)

	_, err := lc.GetFees(context.Background(), "U1", "ACTIVE")
	assert.ErrorContains(t, err, "status 400")
}
