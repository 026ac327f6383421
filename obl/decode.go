package obl

// decodeCodeword applies one received Baudot codeword against shift,
// updating it in place for LETR/FIGR and returning the decoded ASCII byte
// otherwise. This is the single decision shared by the demodulator's
// character decode (§4.5) and by anything that wants to replay a stream of
// codewords produced by the TX queue (§8 property 2).
func decodeCodeword(shift *ShiftState, code Baudot) (ch byte, isShiftCode bool) {
	switch code {
	case LETR:
		*shift = Letters
		return 0, true
	case FIGR:
		*shift = Figures
		return 0, true
	default:
		table := shiftTable(*shift)
		return table[code], false
	}
}
