package model

import (
	"bytes"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Loan is a time-bounded assignment of one game to one client. Dates are
// calendar days in YYYY-MM-DD form.
//
// Invariants enforced before a loan is sent to the backend (see package
// loan): EndDate strictly after StartDate, span at most 14 days, both
// references set.
type Loan struct {
	ID        string `json:"id,omitempty"`
	Game      Game   `json:"game"`
	Client    Client `json:"client"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// LoanInput is the fixed shape a loan is normalized into before validation
// and submission. References are bare identifiers.
type LoanInput struct {
	ID        string `json:"id,omitempty"`
	GameID    string `json:"game"`
	ClientID  string `json:"client"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Input converts a stored loan back into its editable shape.
func (l Loan) Input() LoanInput {
	return LoanInput{
		ID:        l.ID,
		GameID:    l.Game.ID,
		ClientID:  l.Client.ID,
		StartDate: l.StartDate,
		EndDate:   l.EndDate,
	}
}

// UnmarshalJSON tolerates the loose shapes the loan endpoint returns: the
// identifier may be "_id", game and client may be embedded objects or bare
// ids, and dates may carry a time component.
func (l *Loan) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID        jsoniter.RawMessage `json:"id"`
		DocID     jsoniter.RawMessage `json:"_id"`
		Game      jsoniter.RawMessage `json:"game"`
		Client    jsoniter.RawMessage `json:"client"`
		StartDate string              `json:"startDate"`
		EndDate   string              `json:"endDate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, _ := bareRef(aux.ID)
	docID, _ := bareRef(aux.DocID)
	l.ID = firstNonEmpty(id, docID)
	l.StartDate = DatePart(aux.StartDate)
	l.EndDate = DatePart(aux.EndDate)

	l.Game = Game{}
	if id, ok := bareRef(aux.Game); ok {
		l.Game.ID = id
	} else if len(aux.Game) > 0 {
		var g struct {
			Game
			ID jsoniter.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(aux.Game, &g); err != nil {
			return err
		}
		id, err := RefID(aux.Game)
		if err != nil {
			return err
		}
		l.Game = g.Game
		l.Game.ID = id
	}

	l.Client = Client{}
	if id, ok := bareRef(aux.Client); ok {
		l.Client.ID = id
	} else if len(aux.Client) > 0 {
		if err := json.Unmarshal(aux.Client, &l.Client); err != nil {
			return err
		}
	}
	return nil
}

// RefID extracts an identifier from a reference that is either a bare id
// (string or number) or an object carrying "id" or "_id". It returns ""
// for null or empty input.
func RefID(raw []byte) (string, error) {
	if id, ok := bareRef(raw); ok {
		return id, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var obj struct {
		ID    jsoniter.RawMessage `json:"id"`
		DocID jsoniter.RawMessage `json:"_id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	if id, ok := bareRef(obj.ID); ok && id != "" {
		return id, nil
	}
	id, _ := bareRef(obj.DocID)
	return id, nil
}

// bareRef reports whether raw is a JSON string or number and returns it as
// an identifier.
func bareRef(raw []byte) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	case c == '-' || (c >= '0' && c <= '9'):
		if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		// Anything else keeps its literal text.
		var n jsoniter.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String(), true
		}
	}
	return "", false
}

// DatePart keeps the calendar date of a value that may be a plain date or
// a full timestamp ("2024-01-05T00:00:00.000Z" -> "2024-01-05").
func DatePart(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}
