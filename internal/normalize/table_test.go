package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable(t *testing.T) {
	t.Run("tab separated", func(t *testing.T) {
		rows, err := ParseTable("Nome\tMatricula\tNR35\nMaria\t123\t01/05/2025\nJoão\t456\t-")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Maria", rows[0]["Nome"])
		assert.Equal(t, "123", rows[0]["Matricula"])
		assert.Equal(t, "01/05/2025", rows[0]["NR35"])
		assert.Nil(t, rows[1]["NR35"])
	})

	t.Run("semicolon separated", func(t *testing.T) {
		rows, err := ParseTable("Nome;Setor\nAna;Produção")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Produção", rows[0]["Setor"])
	})

	t.Run("comma separated", func(t *testing.T) {
		rows, err := ParseTable("Nome,Setor\nAna,Produção")
		require.NoError(t, err)
		assert.Equal(t, "Ana", rows[0]["Nome"])
	})

	t.Run("tab wins over other separators", func(t *testing.T) {
		rows, err := ParseTable("Nome\tObs\nAna\tvalor, com virgula")
		require.NoError(t, err)
		assert.Equal(t, "valor, com virgula", rows[0]["Obs"])
	})

	t.Run("windows line endings", func(t *testing.T) {
		rows, err := ParseTable("Nome\tSetor\r\nAna\tTI\r\n")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "TI", rows[0]["Setor"])
	})

	t.Run("short rows leave trailing cells absent", func(t *testing.T) {
		rows, err := ParseTable("Nome\tSetor\tNR10\nAna")
		require.NoError(t, err)
		assert.Equal(t, "Ana", rows[0]["Nome"])
		assert.Nil(t, rows[0]["Setor"])
		assert.Nil(t, rows[0]["NR10"])
	})

	t.Run("sentinel cells become nil", func(t *testing.T) {
		rows, err := ParseTable("Nome\tNR33\nAna\tN/A")
		require.NoError(t, err)
		assert.Nil(t, rows[0]["NR33"])
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseTable("  \n  ")
		assert.ErrorIs(t, err, ErrEmptyTable)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := ParseTable("Nome\tSetor")
		assert.ErrorIs(t, err, ErrHeaderOnly)
	})

	t.Run("header plus blank lines", func(t *testing.T) {
		_, err := ParseTable("Nome\tSetor\n\n\n")
		assert.ErrorIs(t, err, ErrHeaderOnly)
	})
}
