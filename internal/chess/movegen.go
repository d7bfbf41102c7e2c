package chess

type direction struct {
	dRow, dCol int
}

var (
	rookDirs   = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = append(append([]direction{}, rookDirs...), bishopDirs...)
	kingDirs   = queenDirs
	knightDirs = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// PseudoLegalMoves lists the moves the piece on from can make by its movement
// pattern and the board's occupancy, without regard to its own king's safety.
// An empty origin yields no moves.
func PseudoLegalMoves(b *Board, from Position) []Move {
	pc, ok := b.Piece(from)
	if !ok {
		return nil
	}
	switch pc.Type {
	case Pawn:
		return pawnMoves(b, from, pc.Color)
	case Knight:
		return stepMoves(b, from, pc.Color, knightDirs)
	case Bishop:
		return slideMoves(b, from, pc.Color, bishopDirs)
	case Rook:
		return slideMoves(b, from, pc.Color, rookDirs)
	case Queen:
		return slideMoves(b, from, pc.Color, queenDirs)
	case King:
		return stepMoves(b, from, pc.Color, kingDirs)
	}
	return nil
}

func slideMoves(b *Board, from Position, color Color, dirs []direction) []Move {
	moves := make([]Move, 0, 14)
	for _, d := range dirs {
		to := from.offset(d.dRow, d.dCol)
		for to.Valid() {
			target, occupied := b.Piece(to)
			if !occupied {
				moves = append(moves, Move{From: from, To: to})
			} else {
				if target.Color != color {
					moves = append(moves, Move{From: from, To: to})
				}
				break
			}
			to = to.offset(d.dRow, d.dCol)
		}
	}
	return moves
}

func stepMoves(b *Board, from Position, color Color, dirs []direction) []Move {
	moves := make([]Move, 0, len(dirs))
	for _, d := range dirs {
		to := from.offset(d.dRow, d.dCol)
		if !to.Valid() {
			continue
		}
		if target, occupied := b.Piece(to); !occupied || target.Color != color {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func pawnMoves(b *Board, from Position, color Color) []Move {
	moves := make([]Move, 0, 4)
	fwd := color.forward()

	one := from.offset(fwd, 0)
	if one.Valid() && b.IsEmpty(one) {
		moves = appendPawnMove(moves, from, one, color)
		two := from.offset(2*fwd, 0)
		if from.Row == color.pawnStartRow() && b.IsEmpty(two) {
			moves = append(moves, Move{From: from, To: two})
		}
	}

	for _, dCol := range []int{-1, 1} {
		to := from.offset(fwd, dCol)
		if !to.Valid() {
			continue
		}
		if target, occupied := b.Piece(to); occupied && target.Color != color {
			moves = appendPawnMove(moves, from, to, color)
		}
	}
	return moves
}

// appendPawnMove adds from->to, expanded into one move per promotion type
// when to is on the far rank.
func appendPawnMove(moves []Move, from, to Position, color Color) []Move {
	if to.Row != color.promotionRow() {
		return append(moves, Move{From: from, To: to})
	}
	for _, t := range PromotionTypes {
		moves = append(moves, Move{From: from, To: to, Promotion: t})
	}
	return moves
}
