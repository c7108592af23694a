package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage(t *testing.T) {
	page, limit, offset := normalizePage(0, 0)
	assert.Equal(t, []int{1, defaultPageLimit, 0}, []int{page, limit, offset})

	page, limit, offset = normalizePage(3, 1000)
	assert.Equal(t, []int{3, maxPageLimit, 2 * maxPageLimit}, []int{page, limit, offset})

	assert.Equal(t, Pagination{Page: 2, Limit: 50, Total: 101, Pages: 3}, newPagination(2, 50, 101))
	assert.Equal(t, 0, newPagination(1, 50, 0).Pages)
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-06-18"}`), &v))
	assert.Equal(t, "2025-06-18", v.D.String())

	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-06-18T23:30:00-04:00"}`), &v))
	assert.Equal(t, "2025-06-18", v.D.String(), "timestamps keep their own calendar date")

	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &v))
	assert.True(t, v.D.IsZero())

	err := json.Unmarshal([]byte(`{"d":"18/06/2025"}`), &v)
	assert.True(t, IsKind(err, KindValidation))

	out, err := json.Marshal(struct {
		A Date `json:"a"`
		B Date `json:"b"`
	}{A: NewDate(time.Date(2025, 6, 18, 22, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2025-06-18","b":null}`, string(out))
}

func TestAddressDefaults(t *testing.T) {
	assert.Equal(t, "NY", Address{Street: "1 Main St"}.withDefaults().State)
	assert.Equal(t, "CT", Address{State: "CT"}.withDefaults().State)
}

func TestProductInputDefaults(t *testing.T) {
	in := ProductInput{Name: "OSC Selects"}
	assert.True(t, DefaultBasePrice.Equal(in.basePrice()))
	assert.Equal(t, UnitOyster, in.unit())
}
