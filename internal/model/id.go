package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID is an opaque backend identifier. The recipe service leaks Mongo
// extended JSON, so both "abc" and {"$oid": "..."} decode to the same ID.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	switch b[0] {
	case '{':
		doc := struct {
			V primitive.ObjectID `bson:"v"`
		}{}
		wrapped := append(append([]byte(`{"v":`), b...), '}')
		if err := bson.UnmarshalExtJSON(wrapped, false, &doc); err != nil {
			return fmt.Errorf("object id: %w", err)
		}
		*id = ID(doc.V.Hex())
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}
