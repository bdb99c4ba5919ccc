package match

import "fmt"

// Substitute swaps a bench player onto the court for an active one, as a
// single atomic pair-swap on a new snapshot. usedThisBreak is the team's
// substitution count during the current break; the caller owns incrementing
// it on success and resetting it when a new break starts.
func (e *Engine) Substitute(st State, side Side, playerInID, playerOutID, usedThisBreak int, breakActive bool) (State, error) {
	if !breakActive {
		return st, ErrSubstitutionWindowClosed
	}
	if usedThisBreak >= e.rules.SubsPerBreak {
		return st, fmt.Errorf("%w: %d of %d used", ErrSubstitutionQuotaExceeded, usedThisBreak, e.rules.SubsPerBreak)
	}
	if !side.Valid() {
		return st, fmt.Errorf("%w: side %d", ErrUnknownEntity, side)
	}

	inIdx := st.Teams[side].playerIndex(playerInID)
	outIdx := st.Teams[side].playerIndex(playerOutID)
	if inIdx < 0 || outIdx < 0 {
		return st, fmt.Errorf("%w: players %d/%d", ErrUnknownEntity, playerInID, playerOutID)
	}
	if inIdx == outIdx {
		return st, fmt.Errorf("%w: player %d on both sides of the swap", ErrInvalidSubstitution, playerInID)
	}
	if st.Teams[side].Players[inIdx].Active || !st.Teams[side].Players[outIdx].Active {
		return st, fmt.Errorf("%w: in-player must be benched and out-player on court", ErrInvalidSubstitution)
	}

	next := st
	next.Teams[side].Players[inIdx].Active = true
	next.Teams[side].Players[outIdx].Active = false
	next.Version++
	return next, nil
}
