package categories

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cats := []model.CategoryInfo{
		{Name: "dining", Label: "Dining", Group: model.GroupLifestyle, Description: "Restaurants, cafes"},
		{Name: "travel", Label: "Travel (legacy)", Group: model.GroupTravel, Deprecated: true, ReplacedBy: "a;b"},
	}

	var buf bytes.Buffer
	err := WriteCatalog(&buf, cats)
	require.NoError(t, err)

	got, err := ReadCatalog(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, cats[0], got[0])
	assert.Equal(t, cats[1], got[1])
}

func TestReadCatalog_BadDeprecated(t *testing.T) {
	data := "category,label,group,deprecated,replaced_by,description\nfuel,Fuel,everyday,maybe,,\n"
	_, err := ReadCatalog(strings.NewReader(data))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadCatalog_EmptyName(t *testing.T) {
	data := "category,label,group,deprecated,replaced_by,description\n,Fuel,everyday,false,,\n"
	_, err := ReadCatalog(strings.NewReader(data))
	assert.Error(t, err)
}

func TestReadCatalog_Empty(t *testing.T) {
	got, err := ReadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDefaultCatalog(t *testing.T) {
	cats := DefaultCatalog()
	require.NotEmpty(t, cats)

	names := make(map[string]model.CategoryInfo)
	for _, c := range cats {
		assert.NotEmpty(t, c.Label, "category %s missing label", c.Name)
		assert.NotEmpty(t, c.Group, "category %s missing group", c.Name)
		names[c.Name] = c
	}
	assert.Contains(t, names, "international_travel")
	assert.Contains(t, names, "domestic_transport")
	assert.True(t, names["travel"].Deprecated)
	assert.Equal(t, "international_travel;domestic_transport", names["travel"].ReplacedBy)
}
