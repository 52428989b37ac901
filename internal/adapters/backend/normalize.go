package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

const envelopeField = "data"

var ErrUnexpectedShape = errors.New("unexpected response shape")

// NormalizeCollection rewrites a collection response into the canonical
// {"<key>":[...]} form. It accepts a bare array, an object carrying key or one
// of aliases, and a {"data": ...} envelope around either. Normalizing an
// already canonical body returns it unchanged.
func NormalizeCollection(body []byte, key string, aliases ...string) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not json", ErrUnexpectedShape)
	}

	items, err := collectionRaw(gjson.ParseBytes(body), append([]string{key}, aliases...))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, key)
	}

	name, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}

	canonical := make([]byte, 0, len(name)+len(items)+3)
	canonical = append(canonical, '{')
	canonical = append(canonical, name...)
	canonical = append(canonical, ':')
	canonical = append(canonical, items...)
	canonical = append(canonical, '}')

	return canonical, nil
}

func collectionRaw(root gjson.Result, fields []string) (string, error) {
	if root.IsArray() {
		return root.Raw, nil
	}
	if !root.IsObject() {
		return "", fmt.Errorf("%w: expected array or object", ErrUnexpectedShape)
	}

	for _, field := range fields {
		value := root.Get(gjson.Escape(field))
		switch {
		case value.IsArray():
			return value.Raw, nil
		case value.Exists() && value.Type == gjson.Null:
			return "[]", nil
		}
	}

	if envelope := root.Get(envelopeField); envelope.IsArray() || envelope.IsObject() {
		return collectionRaw(envelope, fields)
	}

	return "", fmt.Errorf("%w: no collection field", ErrUnexpectedShape)
}

// NormalizeObject returns the bare JSON object from a single-resource
// response. The object may be bare, wrapped in key or one of aliases, or sit
// inside a {"data": ...} envelope.
func NormalizeObject(body []byte, key string, aliases ...string) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not json", ErrUnexpectedShape)
	}

	raw, err := objectRaw(gjson.ParseBytes(body), append([]string{key}, aliases...))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, key)
	}

	return []byte(raw), nil
}

func objectRaw(root gjson.Result, fields []string) (string, error) {
	if !root.IsObject() {
		return "", fmt.Errorf("%w: expected object", ErrUnexpectedShape)
	}

	for _, field := range fields {
		if value := root.Get(gjson.Escape(field)); value.IsObject() {
			return value.Raw, nil
		}
	}

	if envelope := root.Get(envelopeField); envelope.IsObject() {
		return objectRaw(envelope, fields)
	}

	return root.Raw, nil
}

func unwrapEnvelope(body []byte) []byte {
	root := gjson.ParseBytes(bytes.TrimSpace(body))
	if envelope := root.Get(envelopeField); envelope.IsObject() {
		return []byte(envelope.Raw)
	}

	return body
}
