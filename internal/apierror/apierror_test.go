package apierror

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopesSerialize(t *testing.T) {
	b, err := json.Marshal(New("Product not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"detail":"Product not found"}`, string(b))

	b, err = json.Marshal(NewValidation(map[string]string{"Barcode": "required"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"detail":"Validation failed","fields":{"Barcode":"required"}}`, string(b))
}
