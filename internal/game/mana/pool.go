package mana

// Type represents a type of mana.
type Type string

const (
	White     Type = "WHITE"
	Blue      Type = "BLUE"
	Black     Type = "BLACK"
	Red       Type = "RED"
	Green     Type = "GREEN"
	Colorless Type = "COLORLESS"
)

// Types lists every mana type in WUBRG-C order.
var Types = []Type{White, Blue, Black, Red, Green, Colorless}

// Pool is a player's mana pool: one count per color plus colorless.
// The pool is owned by the single match goroutine, so it carries no lock.
type Pool struct {
	amounts map[Type]int
}

// NewPool creates an empty mana pool.
func NewPool() *Pool {
	return &Pool{amounts: make(map[Type]int)}
}

// Add adds mana to the pool. Non-positive amounts are ignored.
func (p *Pool) Add(t Type, amount int) {
	if amount > 0 {
		p.amounts[t] += amount
	}
}

// Spend removes mana from the pool. Returns false without mutating if
// the pool holds less than the requested amount.
func (p *Pool) Spend(t Type, amount int) bool {
	if amount <= 0 {
		return true
	}
	if p.amounts[t] < amount {
		return false
	}
	p.amounts[t] -= amount
	return true
}

// Get returns the amount of the given mana type.
func (p *Pool) Get(t Type) int {
	return p.amounts[t]
}

// Total returns the amount of mana across all types.
func (p *Pool) Total() int {
	total := 0
	for _, amount := range p.amounts {
		total += amount
	}
	return total
}

// Empty removes all mana from the pool and returns how much was removed.
func (p *Pool) Empty() int {
	removed := p.Total()
	p.amounts = make(map[Type]int)
	return removed
}
