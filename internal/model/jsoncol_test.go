package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCuttingPartListScanKeepsWireShape(t *testing.T) {
	raw := `[{"name": "vamp", "quantity": 2, "consumption": 3.5, "material": "calf leather", "notes": "grain out"},
	         {"name": "quarter", "quantity": 2, "consumption": 2.1, "material": null, "notes": ""}]`

	var l CuttingPartList
	require.NoError(t, l.Scan([]byte(raw)))
	require.Len(t, l, 2)

	assert.Equal(t, "vamp", l[0].Name)
	assert.Equal(t, 2, l[0].Quantity)
	assert.Equal(t, 3.5, l[0].Consumption)
	require.NotNil(t, l[0].Material)
	assert.Equal(t, "calf leather", *l[0].Material)
	assert.Nil(t, l[0].MaterialID)
	assert.Nil(t, l[1].Material)
}

func TestCuttingPartEntryOmitsMaterialIDWhenAbsent(t *testing.T) {
	// Base rows carry no material_id key at all; variant rows do.
	b, err := json.Marshal(CuttingPartEntry{Name: "vamp", Quantity: 2, Consumption: 3.5})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "material_id")

	id := int64(4)
	b, err = json.Marshal(CuttingPartEntry{Name: "vamp", Quantity: 2, MaterialID: &id})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"material_id":4`)
}

func TestScanDoubleEncodedLegacyColumn(t *testing.T) {
	// Old writers stored the JSON document wrapped in a JSON string.
	raw := `"[{\"name\": \"vamp\", \"quantity\": 2, \"consumption\": 3.5, \"material\": null, \"notes\": \"\"}]"`

	var l CuttingPartList
	require.NoError(t, l.Scan([]byte(raw)))
	require.Len(t, l, 1)
	assert.Equal(t, "vamp", l[0].Name)
}

func TestScanMalformedColumnDegradesToEmpty(t *testing.T) {
	var l CuttingPartList
	require.NoError(t, l.Scan([]byte(`{not json`)), "a broken column must not fail the row read")
	assert.NotNil(t, l)
	assert.Empty(t, l)

	var h HardwareList
	require.NoError(t, h.Scan("garbage"))
	assert.Empty(t, h)

	var ids OptionIDs
	require.NoError(t, ids.Scan(nil))
	assert.Empty(t, ids)
}

func TestValueIsNullForEmptyLists(t *testing.T) {
	var l CuttingPartList
	v, err := l.Value()
	require.NoError(t, err)
	assert.Nil(t, v, "empty list must persist as NULL, not []")

	var ids OptionIDs
	v, err = ids.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSpecificationListsRoundTrip(t *testing.T) {
	leather := "calf leather"
	matID := int64(4)
	soleID := int64(12)

	parts := CuttingPartList{
		{Name: "vamp", Quantity: 2, Consumption: 3.5, Material: &leather, MaterialID: &matID, Notes: "grain out"},
		{Name: "quarter", Quantity: 2, Consumption: 2.1},
	}
	hardware := HardwareList{
		{Name: "eyelets", Quantity: 12, Unit: "pcs"},
		{Name: "laces", Quantity: 1, Unit: "pair", Notes: "waxed"},
	}
	soles := SoleList{
		{Material: "rubber", MaterialID: &soleID, Thickness: 4.5, Color: "black", HeelHeight: 2.0, PlatformHeight: 0.5},
	}

	v, err := parts.Value()
	require.NoError(t, err)
	var gotParts CuttingPartList
	require.NoError(t, gotParts.Scan(v))
	assert.Equal(t, parts, gotParts)

	v, err = hardware.Value()
	require.NoError(t, err)
	var gotHardware HardwareList
	require.NoError(t, gotHardware.Scan(v))
	assert.Equal(t, hardware, gotHardware)

	v, err = soles.Value()
	require.NoError(t, err)
	var gotSoles SoleList
	require.NoError(t, gotSoles.Scan(v))
	assert.Equal(t, soles, gotSoles)
}

func TestSoleListRoundTrip(t *testing.T) {
	id := int64(12)
	in := SoleList{{
		Material:   "rubber",
		MaterialID: &id,
		Thickness:  4.5,
		Color:      "black",
		HeelHeight: 2.0,
	}}

	v, err := in.Value()
	require.NoError(t, err)

	var out SoleList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)
}

func TestHardwareListScan(t *testing.T) {
	raw := `[{"name": "eyelets", "quantity": 12, "unit": "pcs", "notes": ""}]`

	var l HardwareList
	require.NoError(t, l.Scan([]byte(raw)))
	require.Len(t, l, 1)
	assert.Equal(t, "eyelets", l[0].Name)
	assert.Equal(t, float64(12), l[0].Quantity)
	assert.Equal(t, "pcs", l[0].Unit)
}

func TestOptionIDsScanAndContains(t *testing.T) {
	var ids OptionIDs
	require.NoError(t, ids.Scan([]byte(`[1, 2, 3]`)))
	assert.Equal(t, OptionIDs{1, 2, 3}, ids)
	assert.True(t, ids.Contains(2))
	assert.False(t, ids.Contains(9))
}
