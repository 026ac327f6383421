package obl

/*------------------------------------------------------------------
 *
 * Purpose:	Process-wide, read-only tables shared by every Modem
 *		instance: the Baudot/ASCII translation tables and the
 *		sine look-up table used for tone generation.
 *
 * Description:	Both tables are built once, guarded by a sync.Once, the
 *		first time a Modem is constructed -  the Go equivalent of
 *		the teacher's "write once at first init, read-only after
 *		that" global state (gen_tone.go's sine_table, dtmf.go's
 *		per-tone coefficients). Nothing here is ever mutated after
 *		initTables returns.
 *
 *---------------------------------------------------------------*/

import (
	"math"
	"sync"
)

// Baudot is a raw 5-bit ITA2 codeword, always in [0, 32).
type Baudot byte

// Shift codewords. These never decode to a printable character; they
// switch the receiving end's interpretation of subsequent codewords.
const (
	FIGR Baudot = 0x1B // shift to FIGURES
	LETR Baudot = 0x1F // shift to LETTERS
)

// ShiftState is the Baudot case a stream of codewords is currently in.
type ShiftState int

const (
	Letters    ShiftState = 1
	Figures    ShiftState = 2
	Whitespace ShiftState = 3 // member of both tables: no shift owed
	NoCase     ShiftState = 4 // before any character has ever been sent
)

func (s ShiftState) String() string {
	switch s {
	case Letters:
		return "LETTERS"
	case Figures:
		return "FIGURES"
	case Whitespace:
		return "WHITESPACE"
	case NoCase:
		return "NO_CASE"
	default:
		return "UNKNOWN"
	}
}

const numBaudotCodes = 32

// replacementGlyph is substituted for any ASCII byte absent from both
// tables, and for any non-ASCII (multi-byte UTF-8) code point.
const replacementGlyph = '\''
const replacementBaudot = Baudot(0x0B) // FIGURES apostrophe

// letterTable and figureTable map a Baudot codeword to the ASCII byte it
// represents in that shift state. Control codes 0x00 (BS), 0x02 (LF), 0x04
// (space) and 0x08 (CR) are identical in both. '^' marks the two codewords
// (FIGR and LETR) reserved for shifting and never emitted as characters.
var letterTable = [numBaudotCodes]byte{
	0x08, 'E', '\n', 'A', ' ', 'S', 'I', 'U',
	'\r', 'D', 'R', 'J', 'N', 'F', 'C', 'K',
	'T', 'Z', 'L', 'W', 'H', 'Y', 'P', 'Q',
	'O', 'B', 'G', '^', 'M', 'X', 'V', '^',
}

var figureTable = [numBaudotCodes]byte{
	0x08, '3', '\n', '-', ' ', ',', '8', '7',
	'\r', '$', '4', '\'', ',', '!', ':', '(',
	'5', '"', ')', '2', '=', '6', '0', '1',
	'9', '?', '+', '^', '.', '/', ';', '^',
}

// shiftTable returns the ASCII table for shift state s. Whitespace and
// NoCase have no table of their own; callers resolve those before indexing.
func shiftTable(s ShiftState) *[numBaudotCodes]byte {
	if s == Figures {
		return &figureTable
	}
	return &letterTable
}

// asciiEntry holds one ASCII byte's Baudot translation: the 5-bit code plus
// flags recording which table(s) carry it.
type asciiEntry struct {
	code      Baudot
	inLetters bool
	inFigures bool
}

// classify reports which shift state the entry's byte belongs to for the purposes of the
// TX queue's shift-tracking policy (§4.2).
func (e asciiEntry) classify() ShiftState {
	if e.inLetters && e.inFigures {
		return Whitespace
	}
	if e.inFigures {
		return Figures
	}
	return Letters
}

var (
	asciiToBaudot [256]asciiEntry
	tablesOnce    sync.Once
	sinLUT        [sineLUTSize]int16
)

const sineLUTSize = 16384

func initTables() {
	tablesOnce.Do(func() {
		buildASCIIToBaudot()
		buildSineLUT()
	})
}

// buildASCIIToBaudot computes the inverse map once: for every ASCII byte,
// search LETTERS first and record it, then search FIGURES and OR its flag
// in. A byte present in neither table defaults to the FIGURES apostrophe,
// the canonical replacement glyph (§4.1).
func buildASCIIToBaudot() {
	for b := 0; b < 256; b++ {
		entry := asciiEntry{code: replacementBaudot}

		for code, ch := range letterTable {
			if ch == byte(b) && ch != '^' {
				entry.code = Baudot(code)
				entry.inLetters = true
				break
			}
		}

		for code, ch := range figureTable {
			if ch == byte(b) && ch != '^' {
				if !entry.inLetters {
					entry.code = Baudot(code)
				}
				entry.inFigures = true
				break
			}
		}

		if !entry.inLetters && !entry.inFigures {
			entry.inFigures = true
		}

		asciiToBaudot[b] = entry
	}
}

// buildSineLUT fills one full period of sine scaled to Q15, indexed by the
// top 14 bits of a 16-bit phase accumulator (§4.1, §4.3).
func buildSineLUT() {
	for i := 0; i < sineLUTSize; i++ {
		sinLUT[i] = int16(32767.0 * math.Sin(2.0*math.Pi*float64(i)/float64(sineLUTSize)))
	}
}
