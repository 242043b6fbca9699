package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable_Comma(t *testing.T) {
	t.Parallel()

	text := "email,name,city\nann@example.com,Ann,Oslo\nbob@example.com,\"Bob, Jr.\",Bergen\n"
	tbl, err := ParseTable(text, "email")
	require.NoError(t, err)

	assert.Equal(t, []string{"email", "name", "city"}, tbl.Columns)
	assert.Equal(t, "email", tbl.EmailColumn)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, row("email", "ann@example.com", "name", "Ann", "city", "Oslo"), tbl.Rows[0])
	assert.Equal(t, "Bob, Jr.", tbl.Rows[1].Get("name"))
	assert.Equal(t, []string{"name", "city"}, tbl.Variables())
}

func TestParseTable_TabsFromSpreadsheet(t *testing.T) {
	t.Parallel()

	text := "\ufeffname\temail\r\nAnn\tann@example.com\r\nBob\tbob@example.com\r\n"
	tbl, err := ParseTable(text, "email")
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"name", "email"}, tbl.Rows[0].Keys())
	assert.Equal(t, "bob@example.com", tbl.Rows[1].Get("email"))
}

func TestParseTable_DefaultsToFirstColumn(t *testing.T) {
	t.Parallel()

	tbl, err := ParseTable("mail,name\nann@example.com,Ann\n", "")
	require.NoError(t, err)
	assert.Equal(t, "mail", tbl.EmailColumn)
}

func TestParseTable_DropsBlankEmails(t *testing.T) {
	t.Parallel()

	tbl, err := ParseTable("email,name\nann@example.com,Ann\n  ,Nobody\nbob@example.com,Bob\n", "email")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "bob@example.com", tbl.Rows[1].Get("email"))
}

func TestParseTable_PadsShortRows(t *testing.T) {
	t.Parallel()

	tbl, err := ParseTable("email,name,city\nann@example.com,Ann\n", "email")
	require.NoError(t, err)
	assert.True(t, tbl.Rows[0].Has("city"))
	assert.Equal(t, "", tbl.Rows[0].Get("city"))
}

func TestParseTable_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		column string
		is     error
	}{
		{"empty", "", "email", ErrMissingHeader},
		{"header only", "email,name\n", "email", ErrEmptyTable},
		{"only blank emails", "email,name\n,Ann\n", "email", ErrEmptyTable},
		{"unknown column", "mail,name\na@b.co,Ann\n", "email", ErrUnknownColumn},
		{"empty column name", "email,,name\na@b.co,x,y\n", "email", ErrEmptyColumnName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(tt.text, tt.column)
			require.ErrorIs(t, err, tt.is)
		})
	}
}

func TestParseTable_DuplicateColumn(t *testing.T) {
	t.Parallel()

	_, err := ParseTable("email,name,name\na@b.co,x,y\n", "email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate column "name"`)
}

func TestParseTable_ExtraCells(t *testing.T) {
	t.Parallel()

	_, err := ParseTable("email,name\na@b.co,Ann,surplus\n", "email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	// trailing empty cells are tolerated
	tbl, err := ParseTable("email,name\na@b.co,Ann,,\n", "email")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestParseTable_InvalidAddresses(t *testing.T) {
	t.Parallel()

	_, err := ParseTable("email\nann@example.com\nnot-an-address\nbob@nodot\n", "email")
	var invalid *InvalidAddressesError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"not-an-address", "bob@nodot"}, invalid.Addresses)
}
