package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "regdesk/pkg/domain-errors"
)

func TestInMemoryTable_ReadReturnsCopies(t *testing.T) {
	table := NewInMemoryTable([]string{"身分證字號", "課程名稱"}, []string{"A123456789", "Yoga"})

	rows, err := table.ReadRows(context.Background())
	require.NoError(t, err)
	rows[1][1] = "mutated"

	again, err := table.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Yoga", again[1][1])
}

func TestInMemoryTable_WriteCellsExtendsShortRows(t *testing.T) {
	table := NewInMemoryTable([]string{"a", "b", "c", "d", "e"}, []string{"A123456789", "王小明"})

	err := table.WriteCells(context.Background(), 2, "E", []string{"已取消", "2025-01-02 03:04:05", "1.2.3.4", "curl"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A123456789", "王小明", "", "", "已取消", "2025-01-02 03:04:05", "1.2.3.4", "curl"}, table.Row(2))
}

func TestInMemoryTable_WriteCellsOverwrites(t *testing.T) {
	table := NewInMemoryTable([]string{"a"}, []string{"x", "y", "z"})

	require.NoError(t, table.WriteCells(context.Background(), 2, "B", []string{"1"}))
	assert.Equal(t, []string{"x", "1", "z"}, table.Row(2))
}

func TestInMemoryTable_RejectsHeaderAndBadColumn(t *testing.T) {
	table := NewInMemoryTable([]string{"a"})

	assert.Error(t, table.WriteCells(context.Background(), 1, "A", []string{"x"}))
	err := table.WriteCells(context.Background(), 2, "5", []string{"x"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
}

func TestLoadCSV(t *testing.T) {
	seed := "身分證字號,姓名,課程名稱,開課日期,狀態\n" +
		"A123456789,王小明,Yoga,2025-03-01\n" +
		"B212345678,陳美麗,Pilates,2025-03-02,已確認\n"

	table, err := LoadCSV(strings.NewReader(seed))
	require.NoError(t, err)

	rows, err := table.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "課程名稱", rows[0][2])
	assert.Len(t, rows[1], 4)
	assert.Equal(t, "已確認", rows[2][4])
}

func TestLoadCSV_Empty(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
}
