// internal/workers/risk/predict-bankruptcy/validation.go
package predictbankruptcy

import (
	stderrors "errors"

	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/common/validation"
)

var inputSchema = validation.MustCompile("predict-bankruptcy-input", `{
  "type": "object",
  "required": ["features"],
  "properties": {
    "features": {"type": "object"}
  }
}`)

// validateVariables checks the raw job variables before decoding.
func validateVariables(variables []byte) error {
	result, err := inputSchema.ValidateBytes(variables)
	if err != nil {
		return errors.NewInvalidRequestBodyError(err)
	}
	if !result.Valid {
		return errors.NewInvalidRequestBodyError(stderrors.New(result.String()))
	}
	return nil
}
