package model

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Loan_UnmarshalJSON_Shapes(t *testing.T) {
	var embedded Loan
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id": "L1",
		"game": {"_id": "g1", "title": "Azul", "age": 8},
		"client": {"id": "c1", "name": "Ana"},
		"startDate": "2024-01-01T00:00:00.000Z",
		"endDate": "2024-01-05"
	}`), &embedded))

	assert.Equal(t, Loan{
		ID:        "L1",
		Game:      Game{ID: "g1", Title: "Azul", Age: 8},
		Client:    Client{ID: "c1", Name: "Ana"},
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	}, embedded)

	var bare Loan
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"game":3,"client":"c9","startDate":"2024-02-01","endDate":"2024-02-02"}`), &bare))
	assert.Equal(t, "7", bare.ID)
	assert.Equal(t, "3", bare.Game.ID)
	assert.Equal(t, "c9", bare.Client.ID)

	var numeric Loan
	require.NoError(t, json.Unmarshal([]byte(`{"id":"L2","game":{"id":11,"title":"Catan","age":10},"client":{"id":4},"startDate":"2024-03-01","endDate":"2024-03-02"}`), &numeric))
	assert.Equal(t, Game{ID: "11", Title: "Catan", Age: 10}, numeric.Game)
	assert.Equal(t, "4", numeric.Client.ID)
}

func Test_Loan_InputRoundTrip(t *testing.T) {
	l := Loan{ID: "L1", Game: Game{ID: "g1", Title: "Azul"}, Client: Client{ID: "c1"}, StartDate: "2024-01-01", EndDate: "2024-01-03"}

	assert.Equal(t, LoanInput{ID: "L1", GameID: "g1", ClientID: "c1", StartDate: "2024-01-01", EndDate: "2024-01-03"}, l.Input())
}

func Test_RefID(t *testing.T) {
	cases := map[string]string{
		`"g1"`:                 "g1",
		`12`:                   "12",
		`9007199254740993`:     "9007199254740993",
		`1e3`:                  "1e3",
		`-4`:                   "-4",
		`{"id":"g2"}`:          "g2",
		`{"_id":"g3"}`:         "g3",
		`{"id":"","_id":"g4"}`: "g4",
		`null`:                 "",
		``:                     "",
	}
	for raw, want := range cases {
		got, err := RefID([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := RefID([]byte(`[1]`))
	assert.Error(t, err)
}

func Test_Client_UnmarshalJSON_AcceptsDocID(t *testing.T) {
	var c Client
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"c1","name":"Ana"}`), &c))
	assert.Equal(t, Client{ID: "c1", Name: "Ana"}, c)

	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"name":"Luis"}`), &c))
	assert.Equal(t, Client{ID: "42", Name: "Luis"}, c)
}

func Test_GameFilter_AlwaysSendsBothParams(t *testing.T) {
	assert.Equal(t, "idCategory=&title=", GameFilter{}.Values().Encode())
	assert.Equal(t, "idCategory=4&title=Catan", GameFilter{Title: "Catan", CategoryID: "4"}.Values().Encode())
}

func Test_LoanFilter_ValuesRoundTrip(t *testing.T) {
	f := LoanFilter{GameID: "g1", Date: "2024-01-03T10:00:00Z", Page: &Pageable{PageNumber: 2, PageSize: 10}}

	v := f.Values()

	assert.Equal(t, "date=2024-01-03&gameId=g1&pageNumber=2&pageSize=10", v.Encode())
	back := LoanFilterFromValues(v)
	assert.Equal(t, "g1", back.GameID)
	assert.Equal(t, "2024-01-03", back.Date)
	require.NotNil(t, back.Page)
	assert.Equal(t, Pageable{PageNumber: 2, PageSize: 10}, *back.Page)

	assert.Empty(t, LoanFilter{}.Values().Encode())
}

func Test_PageableFromValues_RejectsBadInput(t *testing.T) {
	for _, q := range []string{"", "pageNumber=1", "pageNumber=x&pageSize=5", "pageNumber=-1&pageSize=5", "pageNumber=0&pageSize=0"} {
		v, _ := url.ParseQuery(q)
		_, ok := PageableFromValues(v)
		assert.False(t, ok, q)
	}
}

func Test_Game_Complete(t *testing.T) {
	g := Game{Title: "Azul", Age: 8, Category: &Category{ID: "1"}, Author: &Author{ID: "2"}}
	assert.True(t, g.Complete())

	missing := []Game{
		{Title: " ", Age: 8, Category: g.Category, Author: g.Author},
		{Title: "Azul", Age: 0, Category: g.Category, Author: g.Author},
		{Title: "Azul", Age: 8, Author: g.Author},
		{Title: "Azul", Age: 8, Category: &Category{}, Author: g.Author},
		{Title: "Azul", Age: 8, Category: g.Category},
	}
	for i, m := range missing {
		assert.False(t, m.Complete(), i)
	}
}

func Test_Page_Constructors(t *testing.T) {
	u := Unpaged[int](nil)
	assert.Equal(t, []int{}, u.Content)
	assert.False(t, u.Paged)

	p := Paged([]int{1, 2}, 40)
	assert.True(t, p.Paged)
	assert.Equal(t, 40, p.Total)
}

func Test_SaveOperation(t *testing.T) {
	assert.Equal(t, OpCreate, SaveOperation(""))
	assert.Equal(t, OpUpdate, SaveOperation("9"))
}
