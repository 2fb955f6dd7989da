package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestA4Geometry(t *testing.T) {
	g := A4()
	assert.InDelta(t, 595.28, g.Width, 0.001)
	assert.InDelta(t, 841.89, g.Height, 0.001)
	assert.Equal(t, 36.0, g.Left())
	assert.InDelta(t, 559.28, g.Right(), 0.001)
	assert.InDelta(t, 523.28, g.ContentWidth(), 0.001)
	assert.InDelta(t, 775.89, g.ContentBottom(), 0.001)
}

func TestCursor_States(t *testing.T) {
	canvas := newRecordingCanvas()
	cur := NewCursor(canvas, A4())

	assert.Equal(t, 0, cur.Page())
	assert.True(t, cur.NeedRowBreak(tableRowHeight), "no page yet")

	require.NoError(t, cur.Ensure(10))
	assert.Equal(t, 1, cur.Page())
	assert.Equal(t, PageMargin, cur.Y())

	cur.Advance(100)
	cur.AdvanceTo(50)
	assert.Equal(t, PageMargin+100, cur.Y(), "AdvanceTo never moves up")

	require.NoError(t, cur.Ensure(cur.Remaining()))
	assert.Equal(t, 1, cur.Page(), "exact fit stays on the page")
	require.NoError(t, cur.Ensure(cur.Remaining()+1))
	assert.Equal(t, 2, cur.Page())
	assert.Equal(t, PageMargin, cur.Y())

	pages, err := cur.Close()
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	assert.ErrorIs(t, cur.NewPage(), ErrCursorClosed)
	assert.ErrorIs(t, cur.Ensure(1), ErrCursorClosed)
	_, err = cur.Close()
	assert.ErrorIs(t, err, ErrCursorClosed)
}

func TestCursor_CloseWithoutContentProducesOnePage(t *testing.T) {
	cur := NewCursor(newRecordingCanvas(), A4())
	pages, err := cur.Close()
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestCursor_SharedCanvasCountsFromFirstPage(t *testing.T) {
	canvas := newRecordingCanvas()
	first := NewCursor(canvas, A4())
	require.NoError(t, first.NewPage())
	require.NoError(t, first.NewPage())
	pages, err := first.Close()
	require.NoError(t, err)
	require.Equal(t, 2, pages)

	second := NewCursor(canvas, A4())
	assert.Equal(t, 0, second.FirstPage())
	require.NoError(t, second.Ensure(10))
	assert.Equal(t, 3, second.FirstPage())
	assert.Equal(t, 1, second.Page())
	require.NoError(t, second.NewPage())
	assert.Equal(t, 2, second.Page())

	pages, err = second.Close()
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Equal(t, 4, canvas.PageCount())
}

func TestCursor_RowQuota(t *testing.T) {
	canvas := newRecordingCanvas()
	cur := NewCursor(canvas, A4())
	require.NoError(t, cur.NewPage())

	continuations := 0
	cur.OnPageBreak(func() { continuations++ })

	for i := 0; i < MaxTableRowsPerPage; i++ {
		require.False(t, cur.NeedRowBreak(1), "row %d", i+1)
		cur.CountRow()
	}
	assert.Equal(t, MaxTableRowsPerPage, cur.Rows())
	assert.True(t, cur.NeedRowBreak(1))

	require.NoError(t, cur.NewPage())
	assert.Equal(t, 0, cur.Rows())
	assert.Equal(t, 1, continuations)

	cur.OnPageBreak(nil)
	require.NoError(t, cur.NewPage())
	assert.Equal(t, 1, continuations)
}

func TestCursor_RowBreakOnSpace(t *testing.T) {
	cur := NewCursor(newRecordingCanvas(), A4())
	require.NoError(t, cur.NewPage())

	cur.AdvanceTo(A4().ContentBottom() - 30)
	assert.False(t, cur.NeedRowBreak(tableRowHeight))
	cur.Advance(10)
	assert.True(t, cur.NeedRowBreak(tableRowHeight))
}

func TestCursor_NeedBlockBreak(t *testing.T) {
	cur := NewCursor(newRecordingCanvas(), A4())
	assert.True(t, cur.NeedBlockBreak(tableRowHeight, 2), "no page yet")
	require.NoError(t, cur.NewPage())

	cur.AdvanceTo(A4().ContentBottom() - 30)
	assert.False(t, cur.NeedBlockBreak(tableRowHeight, 1))
	assert.True(t, cur.NeedBlockBreak(tableRowHeight, 2))

	require.NoError(t, cur.NewPage())
	for i := 0; i < MaxTableRowsPerPage-1; i++ {
		cur.CountRow()
	}
	assert.False(t, cur.NeedBlockBreak(1, 1))
	assert.True(t, cur.NeedBlockBreak(1, 2), "one quota slot left")
}

func TestCursor_NextShadeAlternates(t *testing.T) {
	cur := NewCursor(newRecordingCanvas(), A4())
	assert.False(t, cur.NextShade())
	assert.True(t, cur.NextShade())
	assert.False(t, cur.NextShade())
	cur.NextShade()
	cur.ResetShade()
	assert.False(t, cur.NextShade())
}
