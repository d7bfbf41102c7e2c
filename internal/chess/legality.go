package chess

import "fmt"

// InCheck reports whether color's king can be captured by one of the
// opponent's pseudo-legal moves on b.
func InCheck(b *Board, color Color) (bool, error) {
	king, err := b.FindKing(color)
	if err != nil {
		return false, err
	}
	return attacks(b, color.Opposite(), king), nil
}

// attacks reports whether any piece of attacker has a pseudo-legal move
// landing on target. target must be occupied by the defender, otherwise pawn
// pushes would count as attacks.
func attacks(b *Board, attacker Color, target Position) bool {
	for _, sq := range b.piecesOf(attacker) {
		for _, m := range PseudoLegalMoves(b, sq.Position) {
			if m.To == target {
				return true
			}
		}
	}
	return false
}

// LegalMoves filters the pseudo-legal moves of the piece on from down to those
// that do not leave its own king capturable. Each candidate is tried on a copy
// of b; b itself is never modified. An empty origin returns ErrNoPiece.
func LegalMoves(b *Board, from Position) ([]Move, error) {
	pc, ok := b.Piece(from)
	if !ok {
		return nil, fmt.Errorf("%v: %w", from, ErrNoPiece)
	}
	pseudo := PseudoLegalMoves(b, from)
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		exposed, err := leavesKingAttacked(b, m, pc.Color)
		if err != nil {
			return nil, err
		}
		if !exposed {
			legal = append(legal, m)
		}
	}
	return legal, nil
}

func leavesKingAttacked(b *Board, m Move, mover Color) (bool, error) {
	scratch := *b
	scratch.apply(m)
	return InCheck(&scratch, mover)
}

// AllLegalMoves collects the legal moves of every piece belonging to color.
func AllLegalMoves(b *Board, color Color) ([]Move, error) {
	var all []Move
	for _, sq := range b.piecesOf(color) {
		moves, err := LegalMoves(b, sq.Position)
		if err != nil {
			return nil, err
		}
		all = append(all, moves...)
	}
	return all, nil
}

// HasLegalMove stops at the first legal move found for color.
func HasLegalMove(b *Board, color Color) (bool, error) {
	if _, err := b.FindKing(color); err != nil {
		return false, err
	}
	for _, sq := range b.piecesOf(color) {
		for _, m := range PseudoLegalMoves(b, sq.Position) {
			exposed, err := leavesKingAttacked(b, m, color)
			if err != nil {
				return false, err
			}
			if !exposed {
				return true, nil
			}
		}
	}
	return false, nil
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(b *Board, turn Color, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}
	moves, err := AllLegalMoves(b, turn)
	if err != nil {
		return 0, err
	}
	if depth == 1 {
		return uint64(len(moves)), nil
	}
	var nodes uint64
	for _, m := range moves {
		next := *b
		next.apply(m)
		n, err := Perft(&next, turn.Opposite(), depth-1)
		if err != nil {
			return 0, err
		}
		nodes += n
	}
	return nodes, nil
}
