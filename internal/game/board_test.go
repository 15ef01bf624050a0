package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoard_StartsEmpty(t *testing.T) {
	req := require.New(t)
	board := NewBoard(10, 10)

	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			req.Equal(PieceEmpty, board.At(i, j))
		}
	}
	req.Equal(BoardInfo{RowSize: 10, ColSize: 10}, board.Describe())
}

func TestBoard_PutOverwritesCell(t *testing.T) {
	req := require.New(t)
	board := NewBoard(10, 10)

	// When a piece is placed and then overwritten
	board.Put(3, 4, PieceBlack)
	req.Equal(PieceBlack, board.At(3, 4))

	board.Put(3, 4, PieceWhite)
	req.Equal(PieceWhite, board.At(3, 4))
}

func TestBoard_ResetClearsEveryCell(t *testing.T) {
	req := require.New(t)
	board := NewBoard(10, 10)

	board.Put(0, 0, PieceBlack)
	board.Put(9, 9, PieceWhite)
	board.Put(5, 5, PieceBlack)

	board.Reset()

	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			req.Equal(PieceEmpty, board.At(i, j))
		}
	}
}

func TestBoard_InBounds(t *testing.T) {
	req := require.New(t)
	board := NewBoard(10, 10)

	req.True(board.InBounds(0, 0))
	req.True(board.InBounds(9, 9))
	req.False(board.InBounds(10, 0))
	req.False(board.InBounds(0, 10))
	req.False(board.InBounds(-1, 0))
	req.False(board.InBounds(0, -1))
}

func TestPieceFromCode(t *testing.T) {
	req := require.New(t)

	req.Equal(PieceBlack, PieceFromCode(0))
	req.Equal(PieceWhite, PieceFromCode(1))
	req.Equal(PieceEmpty, PieceFromCode(-1))
	req.Equal(PieceEmpty, PieceFromCode(2))
	req.Equal(-1, PieceEmpty.Code())
}
