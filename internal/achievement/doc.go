// Package achievement evaluates badge progress over a user's activity log.
//
// A badge's Criteria carries one of four rules:
//
//   - CountRule: number of matching entries in the period
//   - TotalRule: summed quantity, or summed CO2e saved
//   - StreakRule: consecutive qualifying calendar days ending today or yesterday
//   - ReductionRule: percent drop in emissions versus the previous period
//
// Progress is recomputed from the full history on every evaluation, so
// entries may arrive out of order. Unlocking is monotonic for every rule.
package achievement
