package loan

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/iliyamo/ludoteca-console/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Decode normalizes a loan payload coming from a view into the fixed
// model.LoanInput shape. "game" and "client" may be bare ids or embedded
// objects (with "id" or "_id"); the loan id may be "id" or "_id"; dates may
// carry a time component. Shape problems are reported as errors, missing
// values are not: those are Validate's job.
func Decode(data []byte) (model.LoanInput, error) {
	var aux struct {
		ID        jsoniter.RawMessage `json:"id"`
		DocID     jsoniter.RawMessage `json:"_id"`
		Game      jsoniter.RawMessage `json:"game"`
		GameID    jsoniter.RawMessage `json:"gameId"`
		Client    jsoniter.RawMessage `json:"client"`
		ClientID  jsoniter.RawMessage `json:"clientId"`
		StartDate string              `json:"startDate"`
		EndDate   string              `json:"endDate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return model.LoanInput{}, fmt.Errorf("decode loan: %w", err)
	}

	var (
		in  model.LoanInput
		err error
	)
	if in.ID, err = firstRef(aux.ID, aux.DocID); err != nil {
		return model.LoanInput{}, fmt.Errorf("decode loan id: %w", err)
	}
	if in.GameID, err = firstRef(aux.Game, aux.GameID); err != nil {
		return model.LoanInput{}, fmt.Errorf("decode loan game: %w", err)
	}
	if in.ClientID, err = firstRef(aux.Client, aux.ClientID); err != nil {
		return model.LoanInput{}, fmt.Errorf("decode loan client: %w", err)
	}
	in.StartDate = model.DatePart(aux.StartDate)
	in.EndDate = model.DatePart(aux.EndDate)
	return in, nil
}

func firstRef(raws ...jsoniter.RawMessage) (string, error) {
	for _, raw := range raws {
		id, err := model.RefID(raw)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}
	return "", nil
}
