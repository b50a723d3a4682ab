package game

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// GameResult describes how a finished game ended.
type GameResult string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Seats. The human always plays X and moves first.
	Human    = PlayerX
	Computer = PlayerO

	// Game results
	ResultHumanWin    GameResult = "human_win"
	ResultComputerWin GameResult = "computer_win"
	ResultTie         GameResult = "tie"
	ResultAborted     GameResult = "aborted"

	// Board boundaries
	CellCount = 9
	PosMin    = 0
	PosMax    = CellCount - 1
)

// Board is a 3x3 grid stored row-major: row = pos/3, col = pos%3.
type Board [CellCount]PlayerMark

// NumericBoard is a Board with each mark replaced by its numeric code.
type NumericBoard [CellCount]float64

// WinLines lists every line that wins the game when all three cells share a mark.
// The order (rows, columns, diagonals) decides which line is reported first.
var WinLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // Rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // Columns
	{0, 4, 8}, {2, 4, 6}, // Diagonals
}

// Opponent returns the other player's mark.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// Code returns the numeric encoding of a mark: empty 0, X 1, O 2.
func (m PlayerMark) Code() float64 {
	switch m {
	case PlayerX:
		return 1
	case PlayerO:
		return 2
	}
	return 0
}

// ValidPosition reports whether pos addresses a cell on the board.
func ValidPosition(pos int) bool {
	return pos >= PosMin && pos <= PosMax
}

// ToNumeric converts the board to its numeric form.
func ToNumeric(board Board) NumericBoard {
	var n NumericBoard
	for i, cell := range board {
		n[i] = cell.Code()
	}
	return n
}

// CheckWinner returns the mark occupying a complete line, or None.
func CheckWinner(board Board) PlayerMark {
	for _, line := range WinLines {
		a := board[line[0]]
		if a != None && a == board[line[1]] && a == board[line[2]] {
			return a
		}
	}
	return None
}

// IsBoardFull checks whether no empty cell remains.
func IsBoardFull(board Board) bool {
	for _, cell := range board {
		if cell == None {
			return false
		}
	}
	return true
}

// EmptyCells returns the empty positions in ascending order.
func EmptyCells(board Board) []int {
	cells := make([]int, 0, CellCount)
	for i, cell := range board {
		if cell == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// ParseBoard builds a board from a slice of marks, as sent over the wire or
// stored in redis. It reports false when the slice has the wrong length or
// holds an unknown mark.
func ParseBoard(cells []PlayerMark) (Board, bool) {
	var board Board
	if len(cells) != CellCount {
		return board, false
	}
	for i, cell := range cells {
		switch cell {
		case None, PlayerX, PlayerO:
			board[i] = cell
		default:
			return Board{}, false
		}
	}
	return board, true
}
