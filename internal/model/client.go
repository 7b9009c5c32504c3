package model

import jsoniter "github.com/json-iterator/go"

// Client is a person who borrows games.
type Client struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts the identifier as "id" or "_id", string or number.
func (c *Client) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID    jsoniter.RawMessage `json:"id"`
		DocID jsoniter.RawMessage `json:"_id"`
		Name  string              `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, _ := bareRef(aux.ID)
	docID, _ := bareRef(aux.DocID)
	c.ID = firstNonEmpty(id, docID)
	c.Name = aux.Name
	return nil
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
