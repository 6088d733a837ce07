package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("byte order mark is stripped", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("\xEF\xBB\xBFFecha,ID_H\n01/02/2024,3"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"Fecha", "ID_H"}, parser.Headers())
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader("  \n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader("Fecha\n\xff\xfe01"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("semicolon delimiter", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("Fecha;Monto\n01/02/2024;450"), WithDelimiter(';'))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAllRows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "450", rows[0].Get("Monto"))
	})
}

func TestCSVParser_ReadAllRows(t *testing.T) {
	data := "Fecha,Concepto,Monto\n01/02/2024, Dues ,450\n,,\n02/02/2024,Short\n"
	parser, err := NewCSVParser(strings.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	rows, err := parser.ReadAllRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].LineNumber)
	assert.Equal(t, "Dues", rows[0].Get("Concepto"))
	assert.Equal(t, 4, rows[1].LineNumber)
	assert.Equal(t, "", rows[1].Get("Monto"))
}

func TestCSVParser_MissingHeaders(t *testing.T) {
	parser, err := NewCSVParser(strings.NewReader("Fecha,Monto\n"))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	assert.Equal(t, []string{"ID_H", "Tipo"}, parser.MissingHeaders([]string{"Fecha", "ID_H", "Tipo"}))
}
