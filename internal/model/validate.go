package model

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/cv.schema.json
var cvSchema []byte

// ErrInvalidCV is returned when a document does not satisfy the CV schema.
var ErrInvalidCV = errors.New("cv schema validation failed")

var schemaLoader = gojsonschema.NewBytesLoader(cvSchema)

// ValidateMap validates a generic map against the embedded CV schema.
func ValidateMap(m map[string]interface{}) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(m))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	// collect errors
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidCV, strings.Join(msgs, "; "))
}

// Decode validates raw JSON and decodes it into a CV.
func Decode(raw []byte) (*CV, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCV, err)
	}
	if err := ValidateMap(m); err != nil {
		return nil, err
	}
	var cv CV
	if err := json.Unmarshal(raw, &cv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCV, err)
	}
	return &cv, nil
}
