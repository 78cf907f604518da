package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIntegrity(t *testing.T) {
	require.NotEmpty(t, Courses)

	seen := map[string]bool{}
	for _, c := range Courses {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Name)
		assert.False(t, seen[c.ID], "duplicate course id %s", c.ID)
		seen[c.ID] = true
		if c.ValidityYears != nil {
			assert.Positive(t, *c.ValidityYears, "course %s", c.ID)
		}
	}
}

func TestFind(t *testing.T) {
	course, ok := Find("NR35")
	require.True(t, ok)
	assert.Equal(t, "NR 35 - Altura", course.Name)
	require.NotNil(t, course.ValidityYears)
	assert.Equal(t, 2, *course.ValidityYears)

	// NR-06 certification does not expire.
	epi, ok := Find("NR06")
	require.True(t, ok)
	assert.Nil(t, epi.ValidityYears)

	_, ok = Find("NR99")
	assert.False(t, ok)
}

func TestIDsMatchCatalogOrder(t *testing.T) {
	ids := IDs()
	require.Len(t, ids, len(Courses))
	assert.Equal(t, Courses[0].ID, ids[0])
	assert.Equal(t, Courses[len(Courses)-1].ID, ids[len(ids)-1])
}
