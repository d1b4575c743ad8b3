package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// Roller provides an interface for rolling the contest die
// This allows us to inject different implementations for testing
type Roller interface {
	// RollD20 rolls a single twenty-sided die, uniform in [1,20]
	RollD20() (int, error)
}
