package budget

import (
    "math"
    "strconv"
)

// WordsPerMinute is the reading speed used for blog reading-time estimates.
const WordsPerMinute = 200

// EstimateMinutesFromWords converts a word count into whole reading minutes
// at the given speed. The result is always at least 1 when words > 0. A
// non-positive speed falls back to WordsPerMinute.
func EstimateMinutesFromWords(words, wpm int) int {
    if words <= 0 {
        return 0
    }
    if wpm <= 0 {
        wpm = WordsPerMinute
    }
    // Ceiling so a short post never reads as zero minutes.
    return int(math.Ceil(float64(words) / float64(wpm)))
}

// ReadingTime formats the estimate the way the dashboard stores time_read,
// e.g. "3 min read". Empty bodies produce "1 min read".
func ReadingTime(words int) string {
    minutes := EstimateMinutesFromWords(words, WordsPerMinute)
    if minutes < 1 {
        minutes = 1
    }
    return strconv.Itoa(minutes) + " min read"
}
