package api

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over JSON as numbers, the way clients send them.
	decimal.MarshalJSONWithoutQuotes = true
}

// JSONCodec carries the plain message structs as application/json.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid json message: %w", err)
	}
	return nil
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	// Decimal amounts travel as CBOR text strings ("12.50") via MarshalText.
	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	cborEnc, err = encOptions.EncMode()
	if err != nil {
		panic("api: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("api: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBORCodec carries the same structs as application/cbor with
// deterministic encoding. Field names follow the json tags.
type CBORCodec struct{}

// Name implements connect.Codec.
func (CBORCodec) Name() string { return "cbor" }

// Marshal implements connect.Codec.
func (CBORCodec) Marshal(msg any) ([]byte, error) {
	return cborEnc.Marshal(msg)
}

// Unmarshal implements connect.Codec.
func (CBORCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := cborDec.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid cbor message: %w", err)
	}
	return nil
}
