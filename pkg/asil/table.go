// Package asil classifies hazardous events into automotive safety integrity
// levels from severity, exposure and controllability.
package asil

// Level is an automotive safety integrity level.
type Level string

const (
	QM     Level = "QM"
	LevelA Level = "A"
	LevelB Level = "B"
	LevelC Level = "C"
	LevelD Level = "D"
)

type ratingKey struct {
	severity        int
	controllability int
	exposure        int
}

// decisionTable maps every (S, C, E) combination inside the supported ranges
// to its integrity level. S0 always resolves to QM regardless of exposure and
// controllability, so it is handled in Classify rather than enumerated here.
// C0 is not uniformly QM and must stay in the table.
var decisionTable = map[ratingKey]Level{
	{1, 0, 1}: QM, {1, 0, 2}: QM, {1, 0, 3}: QM, {1, 0, 4}: QM,
	{1, 1, 1}: QM, {1, 1, 2}: QM, {1, 1, 3}: QM, {1, 1, 4}: QM,
	{1, 2, 1}: QM, {1, 2, 2}: QM, {1, 2, 3}: QM, {1, 2, 4}: LevelA,
	{1, 3, 1}: QM, {1, 3, 2}: QM, {1, 3, 3}: LevelA, {1, 3, 4}: LevelB,

	{2, 0, 1}: QM, {2, 0, 2}: QM, {2, 0, 3}: QM, {2, 0, 4}: LevelA,
	{2, 1, 1}: QM, {2, 1, 2}: QM, {2, 1, 3}: QM, {2, 1, 4}: LevelA,
	{2, 2, 1}: QM, {2, 2, 2}: QM, {2, 2, 3}: LevelA, {2, 2, 4}: LevelB,
	{2, 3, 1}: QM, {2, 3, 2}: LevelA, {2, 3, 3}: LevelB, {2, 3, 4}: LevelC,

	{3, 0, 1}: QM, {3, 0, 2}: QM, {3, 0, 3}: LevelA, {3, 0, 4}: LevelB,
	{3, 1, 1}: QM, {3, 1, 2}: QM, {3, 1, 3}: LevelA, {3, 1, 4}: LevelB,
	{3, 2, 1}: LevelA, {3, 2, 2}: LevelB, {3, 2, 3}: LevelB, {3, 2, 4}: LevelC,
	{3, 3, 1}: LevelB, {3, 3, 2}: LevelC, {3, 3, 3}: LevelC, {3, 3, 4}: LevelD,
}
