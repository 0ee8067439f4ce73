package analytics

// Streaks takes consistency flags in chronological order and returns the run of
// true values ending at the last flag (current) and the longest run anywhere (best).
func Streaks(flags []bool) (current, best int) {
	run := 0
	for _, ok := range flags {
		if !ok {
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
	}
	for i := len(flags) - 1; i >= 0 && flags[i]; i-- {
		current++
	}
	return current, best
}
