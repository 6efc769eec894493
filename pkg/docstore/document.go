package docstore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToDocument converts doc to a bson.M and assigns a fresh ObjectID hex id
// when "_id" is absent or empty. It returns the document and its id.
func ToDocument(doc interface{}) (bson.M, string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("docstore: marshal: %w", err)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, "", fmt.Errorf("docstore: unmarshal: %w", err)
	}

	id, _ := m["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		m["_id"] = id
	}
	return m, id, nil
}

// Normalize round-trips v through bson so values compare the same way the
// server would store them (time.Time becomes primitive.DateTime and so on).
func Normalize(fields map[string]interface{}) (bson.M, error) {
	raw, err := bson.Marshal(bson.M(fields))
	if err != nil {
		return nil, fmt.Errorf("docstore: marshal fields: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("docstore: unmarshal fields: %w", err)
	}
	return m, nil
}

// Decode copies a stored document into dest.
func Decode(m bson.M, dest interface{}) error {
	raw, err := bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("docstore: marshal: %w", err)
	}
	if err := bson.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	return nil
}

func indexKeys(keys []IndexKey) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: k.Field, Value: dir})
	}
	return d
}

func queryFilter(q Query) bson.M {
	if q.Field == "" {
		return bson.M{}
	}
	return bson.M{q.Field: q.Value}
}
