package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin/binding"
)

// bindMap re-binds an already-decoded JSON body into a typed request struct
// and runs the usual binding validation. Used where a handler needs the raw
// map first to distinguish absent fields from explicit nulls.
func bindMap(raw map[string]any, target any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(target)
}
