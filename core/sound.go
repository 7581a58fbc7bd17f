package core

// SoundType represents different sound effects
type SoundType int

const (
	SoundPop   SoundType = iota // Caret explosion
	SoundParty                  // Party mode burst
	SoundTypeCount
)
