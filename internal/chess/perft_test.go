package chess

import (
	"math/rand"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var promotionChoices = []Kind{Queen, Rook, Bishop, Knight}

// perft counts leaf nodes, expanding every promotion into its four choices.
func perft(pos Position, rights CastlingRights, side Color, depth int) int {
	if depth == 0 {
		return 1
	}
	nodes := 0
	for _, m := range AllLegalMoves(&pos, rights, side) {
		pc := pos.at(m.From)
		kinds := []Kind{NoKind}
		if reachesLastRank(pc, m.To) {
			kinds = promotionChoices
		}
		for _, k := range kinds {
			m.Promotion = k
			next := pos
			nextRights := rights.AfterMove(&pos, m)
			if err := next.ApplyMove(m); err != nil {
				panic(err)
			}
			nodes += perft(next, nextRights, side.Opposite(), depth-1)
		}
	}
	return nodes
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
		nodes int
	}{
		{"initial depth 1", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 1, 20},
		{"initial depth 2", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 2, 400},
		{"initial depth 3", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 3, 8902},
		{"kiwipete depth 1", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, 48},
		{"rook endgame depth 1", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 1, 14},
		{"rook endgame depth 2", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 2, 191},
		{"promotions and pins depth 1", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if testing.Short() && tt.depth > 2 {
				t.Skip("deep perft")
			}
			g := mustFEN(t, tt.fen)
			assert.Equal(t, tt.nodes, perft(g.Position, g.CastlingRights, g.Turn, tt.depth))
		})
	}
}

type fromTo struct{ from, to Square }

func squareFromIndex(idx uint8) Square {
	return Square{Row: 7 - int(idx)/8, Col: int(idx) % 8}
}

// referenceMoves lists the from/to pairs of a bitboard generator for the
// same position. Promotions collapse into one pair.
func referenceMoves(t *testing.T, fen string) map[fromTo]bool {
	t.Helper()
	b := dragontoothmg.ParseFen(fen)
	out := make(map[fromTo]bool)
	for _, m := range b.GenerateLegalMoves() {
		out[fromTo{squareFromIndex(m.From()), squareFromIndex(m.To())}] = true
	}
	return out
}

func engineMoves(g *GameState) map[fromTo]bool {
	out := make(map[fromTo]bool)
	for _, m := range AllLegalMoves(&g.Position, g.CastlingRights, g.Turn) {
		out[fromTo{m.From, m.To}] = true
	}
	return out
}

func TestLegalMovesMatchReferenceGenerator(t *testing.T) {
	for _, fen := range []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 1",
	} {
		g := mustFEN(t, fen)
		assert.Equal(t, referenceMoves(t, fen), engineMoves(g), fen)
	}
}

// Plays seeded random games and compares the legal move set with the
// reference generator at every ply. FEN() never carries an en passant
// target, so both sides agree on excluding it.
func TestRandomGamesMatchReferenceGenerator(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	games := 8
	if testing.Short() {
		games = 2
	}
	for game := 0; game < games; game++ {
		g := NewGame()
		for ply := 0; ply < 150 && !g.Status.IsOver(); ply++ {
			fen := g.FEN()
			want := referenceMoves(t, fen)
			got := engineMoves(g)
			require.Equal(t, want, got, "game %d ply %d: %s\n%s", game, ply, fen, g.Position.String())

			moves := AllLegalMoves(&g.Position, g.CastlingRights, g.Turn)
			m := moves[rng.Intn(len(moves))]
			require.NoError(t, g.Move(m))
			if g.PendingPromotion != nil {
				require.NoError(t, g.Promote(promotionChoices[rng.Intn(len(promotionChoices))]))
			}
		}
		if g.Status.IsOver() {
			assert.Empty(t, referenceMoves(t, g.FEN()), "reference agrees the game is over")
		}
	}
}
