// Package picker chooses the next digit to practice.
package picker

import (
	"math/rand"
	"time"
)

const lastDigit = 9

// Picker selects practice digits.
type Picker struct {
	rnd *rand.Rand
}

// New returns a Picker seeded with the current time.
func New() *Picker {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Picker drawing from src.
func NewWithSource(src rand.Source) *Picker {
	return &Picker{rnd: rand.New(src)}
}

// Next returns the digit after current. The sequence stops at 9: ok is false
// when there is no next digit and current is returned unchanged.
func (p *Picker) Next(current int) (next int, ok bool) {
	if current >= lastDigit {
		return current, false
	}
	return current + 1, true
}

// NextWeighted selects a digit other than current with a bias toward weak
// digits. Each weak digit weighs 1+factor, every other digit weighs 1.
func (p *Picker) NextWeighted(current int, weakSet map[int]struct{}, factor float64) int {
	digits := make([]int, 0, lastDigit+1)
	weights := make([]float64, 0, lastDigit+1)
	total := 0.0
	for d := 0; d <= lastDigit; d++ {
		if d == current {
			continue
		}
		w := 1.0
		if _, ok := weakSet[d]; ok {
			w += factor
		}
		digits = append(digits, d)
		weights = append(weights, w)
		total += w
	}

	r := p.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return digits[i]
		}
	}
	return digits[len(digits)-1]
}

// Pick returns the next digit for current: weighted when weakSet is not
// empty, sequential otherwise.
func (p *Picker) Pick(current int, weakSet map[int]struct{}, factor float64) (int, bool) {
	if len(weakSet) > 0 {
		return p.NextWeighted(current, weakSet, factor), true
	}
	return p.Next(current)
}
