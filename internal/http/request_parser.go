package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// maxBodyBytes caps the size of a POST /transactions body.
const maxBodyBytes = 1 << 20

// Amounts must fit a float64 and carry at most maxAmountScale decimal places.
const (
	maxAmountScale    = 30
	maxAmountExponent = 308
)

var maxAmount = decimal.NewFromFloat(math.MaxFloat64)

// ParseTransactionInput decodes and validates a transaction payload.
// Every field problem is reported at once in a *core.ValidationError.
// An "id" field, like any other unknown field, is ignored.
func ParseTransactionInput(w http.ResponseWriter, r *http.Request) (core.TransactionInput, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.TransactionInput{}, invalidBody(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return core.TransactionInput{}, fmt.Errorf("read request body: %w", err)
	}
	return DecodeTransactionInput(body)
}

// DecodeTransactionInput validates a raw JSON document against the transaction shape.
func DecodeTransactionInput(body []byte) (core.TransactionInput, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return core.TransactionInput{}, invalidBody("request body is empty")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return core.TransactionInput{}, invalidBody("input should be a valid JSON object")
		}
		return core.TransactionInput{}, invalidBody("JSON decode error: " + err.Error())
	}
	if fields == nil {
		// literal null
		return core.TransactionInput{}, invalidBody("input should be a valid JSON object")
	}

	var (
		in   core.TransactionInput
		verr core.ValidationError
	)
	in.Date = stringField(fields, "date", &verr)
	in.Description = stringField(fields, "description", &verr)
	in.Amount = amountField(fields, "amount", &verr)
	in.Category = stringField(fields, "category", &verr)

	if err := verr.OrNil(); err != nil {
		return core.TransactionInput{}, err
	}
	return in, nil
}

func invalidBody(msg string) error {
	var verr core.ValidationError
	verr.Add(core.NewFieldError("", core.ErrInvalidBody, msg))
	return &verr
}

func stringField(fields map[string]json.RawMessage, name string, verr *core.ValidationError) string {
	raw, ok := fields[name]
	if !ok {
		verr.Add(core.NewFieldError(name, core.ErrMissingField, "field required"))
		return ""
	}
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		verr.Add(core.NewFieldError(name, core.ErrInvalidType, "input should be a valid string"))
		return ""
	}
	return s
}

func amountField(fields map[string]json.RawMessage, name string, verr *core.ValidationError) decimal.Decimal {
	raw, ok := fields[name]
	if !ok {
		verr.Add(core.NewFieldError(name, core.ErrMissingField, "field required"))
		return decimal.Zero
	}
	var n json.Number
	if isNull(raw) || raw[0] == '"' || json.Unmarshal(raw, &n) != nil {
		verr.Add(core.NewFieldError(name, core.ErrInvalidType, "input should be a valid number"))
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		verr.Add(core.NewFieldError(name, core.ErrInvalidType, "input should be a valid number"))
		return decimal.Zero
	}
	if d.Exponent() < -maxAmountScale || d.Exponent() > maxAmountExponent || d.Abs().GreaterThan(maxAmount) {
		verr.Add(core.NewFieldError(name, core.ErrOutOfRange,
			fmt.Sprintf("input should be a finite number with at most %d decimal places", maxAmountScale)))
		return decimal.Zero
	}
	return d
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
