package kiosk

import (
	"testing"

	"ramen-kiosk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	cfg := testConfig()
	order := model.Order{Base: 1, Toppings: []model.ToppingID{10, 11}, SpiceLevel: 0}

	summary, err := Summarize(cfg, &order)
	require.NoError(t, err)

	// The base and the priced topping are billed; the free one is not.
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, "Rice", summary.Lines[0].Name)
	assert.Equal(t, "5.00", summary.Lines[0].Price.StringFixed(2))
	assert.Equal(t, "Cheese", summary.Lines[1].Name)
	assert.Equal(t, "1.50", summary.Lines[1].Price.StringFixed(2))
	assert.Equal(t, "6.50", summary.Total.StringFixed(2))
}

func TestSummarize_BaseOnly(t *testing.T) {
	cfg := testConfig()
	order := model.Order{Base: 2, Toppings: nil, SpiceLevel: 1}

	summary, err := Summarize(cfg, &order)
	require.NoError(t, err)

	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "Noodles", summary.Lines[0].Name)
	assert.Equal(t, "6.00", summary.Total.StringFixed(2))
}

func TestSummarize_UnknownReference(t *testing.T) {
	cfg := testConfig()

	_, err := Summarize(cfg, &model.Order{Base: 99, SpiceLevel: 0})
	assert.Error(t, err)

	_, err = Summarize(cfg, &model.Order{Base: 1, Toppings: []model.ToppingID{99}, SpiceLevel: 0})
	assert.Error(t, err)
}
