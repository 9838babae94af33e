/*
Package traversal is the state machine that decides, one relationship at a
time, how a journey may move through the time-expanded network.

A branch of the search is a JourneyState: where the journey is, what time it
is there, how many changes it made and which State it is in. Machine.Next
takes a branch and one outgoing relationship of its node and returns the
successor branch together with a ReasonCode:

	m := traversal.NewMachine(tx, &req, limits, arena)
	branch := m.Start(origin, req.Time)
	for _, rel := range rels {
	    out, err := m.Next(branch, rel)
	    if err != nil {
	        return err // ErrIllegalTransition or storage failure
	    }
	    if !out.Followed {
	        continue // not an edge this state may take
	    }
	    if !out.Accepted {
	        // out.Reason explains the rejection
	    }
	}

The legal edges per state are:

	JourneyStart, AtStation  ENTER_PLATFORM, BOARD, WALKS_TO, LINKED
	AtPlatform               LEAVE_PLATFORM, BOARD
	AtRouteStation           GOES_TO (board a trip)
	OnboardService           GOES_TO (same trip, next stop), DEPART
	Walking                  ENTER_PLATFORM, BOARD
	JourneyComplete          none

Every accepted step is appended to the run's PathArena; the resulting
HowIGotHere chain explains how a branch got where it is and is what journeys
are assembled from.
*/
package traversal
