package banks

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankrec/internal/model"
)

func TestDefaultCatalog_NoDuplicates(t *testing.T) {
	cat := DefaultCatalog()
	assert.Len(t, cat, 11)
	assert.Empty(t, Validate(cat))
}

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog(DefaultCatalog())

	b, ok := c.Lookup("001")
	require.True(t, ok)
	assert.Equal(t, "PICHINCHA", b.ShortName)

	b, ok = c.Lookup("pacifico")
	require.True(t, ok)
	assert.Equal(t, "002", b.SBSCode)

	_, ok = c.Lookup("999")
	assert.False(t, ok)
}

func TestWriteReadBanks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBanks(&buf, DefaultCatalog()))
	assert.True(t, strings.HasPrefix(buf.String(), "sbs_code,name,short_name,swift_code,website,phone\n"))

	got, err := ReadBanks(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), got)
}

func TestReadBanks_Errors(t *testing.T) {
	_, err := ReadBanks(strings.NewReader("sbs_code,name,short_name,swift_code,website,phone\n,Banco X,X,,,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, err = ReadBanks(strings.NewReader("sbs_code,name\n001,x\n"))
	assert.Error(t, err)

	banks, err := ReadBanks(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, banks)
}

func TestValidate_Duplicates(t *testing.T) {
	errs := Validate([]model.Bank{
		{SBSCode: "001", ShortName: "A"},
		{SBSCode: "001", ShortName: "a"},
	})
	assert.Len(t, errs, 2)
}
