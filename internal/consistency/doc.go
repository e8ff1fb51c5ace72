// Package consistency accumulates a period's games into a MonthTable and
// cross-checks each team's summed player points against its reported total.
//
// The check produces a single verdict for the whole period: one failing game
// marks every row of the month as inconsistent.
package consistency
