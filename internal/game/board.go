package game

// Piece is the state of one board cell.
type Piece int

const (
	PieceEmpty Piece = -1
	PieceBlack Piece = 0
	PieceWhite Piece = 1
)

// PieceFromCode maps the wire code to a Piece. Anything outside {0,1}
// is treated as empty, which mutating operations reject.
func PieceFromCode(code int) Piece {
	switch code {
	case 0:
		return PieceBlack
	case 1:
		return PieceWhite
	default:
		return PieceEmpty
	}
}

func (p Piece) Code() int { return int(p) }

// BoardInfo is the structural summary sent to clients. The cell matrix
// itself is never broadcast; clients replay put_piece events instead.
type BoardInfo struct {
	RowSize int `json:"row_size"`
	ColSize int `json:"col_size"`
}

// Board is a fixed-size Gomoku grid. Dimensions are set at creation.
type Board struct {
	rows  int
	cols  int
	cells [][]Piece
}

func NewBoard(rows, cols int) *Board {
	b := &Board{rows: rows, cols: cols, cells: make([][]Piece, rows)}
	for i := range b.cells {
		b.cells[i] = make([]Piece, cols)
	}
	b.Reset()
	return b
}

func (b *Board) Reset() {
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = PieceEmpty
		}
	}
}

// Put overwrites the target cell. Bounds and piece validity are the
// caller's responsibility; there is no legality or turn check.
func (b *Board) Put(row, col int, piece Piece) {
	b.cells[row][col] = piece
}

func (b *Board) At(row, col int) Piece { return b.cells[row][col] }

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

func (b *Board) Describe() BoardInfo {
	return BoardInfo{RowSize: b.rows, ColSize: b.cols}
}
