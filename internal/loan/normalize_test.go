package loan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ludoteca-console/internal/loan"
	"github.com/iliyamo/ludoteca-console/internal/model"
)

func Test_Decode_BareIdentifiers(t *testing.T) {
	in, err := loan.Decode([]byte(`{"game":"g1","client":"c1","startDate":"2024-01-01","endDate":"2024-01-05"}`))

	require.NoError(t, err)
	assert.Equal(t, model.LoanInput{GameID: "g1", ClientID: "c1", StartDate: "2024-01-01", EndDate: "2024-01-05"}, in)
}

func Test_Decode_EmbeddedObjects(t *testing.T) {
	payload := `{
		"_id": "l9",
		"game": {"id": 7, "title": "Catan"},
		"client": {"_id": "c3", "name": "Ana"},
		"startDate": "2024-01-01T00:00:00.000Z",
		"endDate": "2024-01-05T00:00:00.000Z"
	}`

	in, err := loan.Decode([]byte(payload))

	require.NoError(t, err)
	assert.Equal(t, model.LoanInput{ID: "l9", GameID: "7", ClientID: "c3", StartDate: "2024-01-01", EndDate: "2024-01-05"}, in)
}

func Test_Decode_ExplicitIDFields(t *testing.T) {
	in, err := loan.Decode([]byte(`{"id":"l1","gameId":"g2","clientId":"c2","startDate":"2024-01-01","endDate":"2024-01-02"}`))

	require.NoError(t, err)
	assert.Equal(t, "l1", in.ID)
	assert.Equal(t, "g2", in.GameID)
	assert.Equal(t, "c2", in.ClientID)
}

func Test_Decode_MissingValuesAreNotShapeErrors(t *testing.T) {
	in, err := loan.Decode([]byte(`{"game":null,"startDate":""}`))

	require.NoError(t, err)
	assert.ErrorIs(t, loan.Validate(in), loan.ErrMissingFields)
}

func Test_Decode_RejectsMalformedJSON(t *testing.T) {
	_, err := loan.Decode([]byte(`{"game":`))

	assert.Error(t, err)
}
