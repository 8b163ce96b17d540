package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"idverify/pkg/domain/residentid"
)

func TestResult_Outcome(t *testing.T) {
	decoded := residentid.Decode(residentid.MustParse("110101199003078718"), nil)

	ok := Valid("110101199003078718", decoded)
	assert.True(t, ok.Valid)
	assert.Equal(t, "valid", ok.Outcome())
	assert.Equal(t, residentid.ReasonNone, ok.Reason)
	assert.Equal(t, "110101", ok.Decoded.RegionCode)

	bad := Invalid("110101199003078719", residentid.BadChecksum)
	assert.False(t, bad.Valid)
	assert.Nil(t, bad.Decoded)
	assert.Equal(t, "bad_checksum", bad.Outcome())
}
