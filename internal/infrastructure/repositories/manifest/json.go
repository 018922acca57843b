package manifest

import (
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// jsonDocument edits JSON in place so that key order and formatting survive.
type jsonDocument struct {
	data []byte
}

func decodeJSON(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(ErrMalformedManifest, "invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, errors.Wrap(ErrMalformedManifest, "JSON root is not an object")
	}
	return &jsonDocument{data: data}, nil
}

func (d *jsonDocument) Get(field string) string {
	return gjson.GetBytes(d.data, field).String()
}

func (d *jsonDocument) Set(field, value string) error {
	updated, err := sjson.SetBytes(d.data, field, value)
	if err != nil {
		return errors.Wrap(err, "could not update JSON")
	}
	d.data = updated
	return nil
}

func (d *jsonDocument) Bytes() ([]byte, error) {
	return d.data, nil
}
