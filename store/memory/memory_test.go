package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/benefit-engine/record"
	"github.com/warp/benefit-engine/store/memory"
)

func TestMemory_EmptyBeforeFirstSave(t *testing.T) {
	m := memory.New()
	cards, err := m.LoadData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.NotNil(t, cards)
}

func TestMemory_SaveThenLoad_DeepCopies(t *testing.T) {
	// GIVEN: A saved record set
	// WHEN: The caller mutates its slice and the loaded copy
	// THEN: Neither mutation reaches the stored state

	m := memory.New()
	ctx := context.Background()

	in := []record.Card{{ID: "c1", Name: "Platinum", Benefits: []record.Benefit{{
		ID: "b1", Description: "dining", TotalAmount: decimal.NewFromInt(50), Frequency: "monthly",
	}}}}
	require.NoError(t, m.SaveData(ctx, in))

	in[0].Name = "mutated after save"

	loaded, err := m.LoadData(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Platinum", loaded[0].Name)

	loaded[0].Benefits[0].Description = "mutated after load"
	again, err := m.LoadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dining", again[0].Benefits[0].Description)
}

func TestMemory_SaveReplacesWholeSet(t *testing.T) {
	m := memory.New()
	ctx := context.Background()

	require.NoError(t, m.SaveData(ctx, []record.Card{{ID: "c1", Name: "one"}, {ID: "c2", Name: "two"}}))
	require.NoError(t, m.SaveData(ctx, []record.Card{{ID: "c3", Name: "three"}}))

	loaded, err := m.LoadData(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "c3", loaded[0].ID)
}
