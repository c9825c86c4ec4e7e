package web

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	HeaderContentType = "Content-Type"
	MimeJSON          = "application/json"
)

// DecodeData decodes the data field of a success envelope.
func DecodeData[T any](r io.Reader) (T, error) {
	var res OKResponse[T]
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		var t T
		return t, fmt.Errorf("decode ok response: %w", err)
	}
	return res.Data, nil
}
