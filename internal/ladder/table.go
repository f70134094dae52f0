package ladder

import (
	"fmt"
	"strings"
)

// TableRank is the room a table is played in.
type TableRank int

const (
	Pan TableRank = iota + 1 // ippan
	Jou                      // joukyuu
	Tok                      // tokujou
	Hou                      // houou
)

// TableKind is the game length and player count of a table.
type TableKind int

const (
	Han4 TableKind = iota + 1 // four-player hanchan
	Ton4                      // four-player tonpuusen
	Han3                      // three-player hanchan
	Ton3                      // three-player tonpuusen
)

// InvalidTableRankError reports a rank outside the closed set.
type InvalidTableRankError struct{ Rank string }

func (e *InvalidTableRankError) Error() string { return "unknown table rank: " + e.Rank }

// InvalidTableKindError reports a kind outside the closed set, or one the model
// cannot evaluate.
type InvalidTableKindError struct{ Kind string }

func (e *InvalidTableKindError) Error() string { return "unknown table kind: " + e.Kind }

func (r TableRank) String() string {
	switch r {
	case Pan:
		return "PAN"
	case Jou:
		return "JOU"
	case Tok:
		return "TOK"
	case Hou:
		return "HOU"
	}
	return fmt.Sprintf("TableRank(%d)", int(r))
}

func (k TableKind) String() string {
	switch k {
	case Han4:
		return "HAN4"
	case Ton4:
		return "TON4"
	case Han3:
		return "HAN3"
	case Ton3:
		return "TON3"
	}
	return fmt.Sprintf("TableKind(%d)", int(k))
}

// ParseTableRank accepts the case-insensitive names "pan", "jou", "tok" and "hou".
func ParseTableRank(s string) (TableRank, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pan":
		return Pan, nil
	case "jou":
		return Jou, nil
	case "tok":
		return Tok, nil
	case "hou":
		return Hou, nil
	}
	return 0, &InvalidTableRankError{Rank: s}
}

// ParseTableKind accepts the case-insensitive names "han4", "ton4", "han3" and "ton3".
func ParseTableKind(s string) (TableKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "han4":
		return Han4, nil
	case "ton4":
		return Ton4, nil
	case "han3":
		return Han3, nil
	case "ton3":
		return Ton3, nil
	}
	return 0, &InvalidTableKindError{Kind: s}
}

// Table is one room and game kind.
type Table struct {
	Rank TableRank
	Kind TableKind
}

func (t Table) String() string { return t.Rank.String() + "/" + t.Kind.String() }

// placementPair returns the first and second place points of a rank. The player
// model reuses the same pair as its table constants.
func placementPair(r TableRank) (first, second int, err error) {
	switch r {
	case Pan:
		return 20, 10, nil
	case Jou:
		return 40, 10, nil
	case Tok:
		return 50, 20, nil
	case Hou:
		return 60, 30, nil
	}
	return 0, 0, &InvalidTableRankError{Rank: r.String()}
}
