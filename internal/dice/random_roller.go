package dice

import "math/rand"

// randomRoller implements Roller with math/rand
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// RollD20 implements Roller.RollD20
func (r *randomRoller) RollD20() (int, error) {
	return rand.Intn(20) + 1, nil
}
