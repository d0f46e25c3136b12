package counters

// CounterType names a kind of counter placed on a player or card.
type CounterType string

const (
	CounterPoison  CounterType = "poison"
	CounterCharge  CounterType = "charge"
	CounterLoyalty CounterType = "loyalty"
	CounterP1P1    CounterType = "+1/+1"
	CounterM1M1    CounterType = "-1/-1"
)

func (ct CounterType) String() string {
	return string(ct)
}

// Counter is a named counter with a count.
type Counter struct {
	Name  string
	Count int
}

// NewCounter creates a counter; a non-positive count is treated as 1.
func NewCounter(name string, count int) *Counter {
	if count <= 0 {
		count = 1
	}
	return &Counter{Name: name, Count: count}
}

// Add increases the count. Non-positive amounts are ignored.
func (c *Counter) Add(amount int) {
	if amount > 0 {
		c.Count += amount
	}
}

// Remove decreases the count, clamping at zero.
func (c *Counter) Remove(amount int) {
	if amount <= 0 {
		return
	}
	if c.Count >= amount {
		c.Count -= amount
	} else {
		c.Count = 0
	}
}

// Copy returns a deep copy of the counter.
func (c *Counter) Copy() *Counter {
	return &Counter{Name: c.Name, Count: c.Count}
}

// Counters is a collection of counters keyed by name.
type Counters struct {
	byName map[string]*Counter
}

// NewCounters creates an empty collection.
func NewCounters() *Counters {
	return &Counters{byName: make(map[string]*Counter)}
}

// Add adds amount counters of the given type, merging with any existing
// counter of the same name.
func (cs *Counters) Add(ct CounterType, amount int) {
	if amount <= 0 {
		return
	}
	if existing, ok := cs.byName[string(ct)]; ok {
		existing.Add(amount)
		return
	}
	cs.byName[string(ct)] = NewCounter(string(ct), amount)
}

// Remove removes up to amount counters of the given type. Returns true
// if any counters were present.
func (cs *Counters) Remove(ct CounterType, amount int) bool {
	counter, ok := cs.byName[string(ct)]
	if !ok || amount <= 0 {
		return false
	}
	counter.Remove(amount)
	if counter.Count == 0 {
		delete(cs.byName, string(ct))
	}
	return true
}

// Count returns the number of counters of the given type.
func (cs *Counters) Count(ct CounterType) int {
	if counter, ok := cs.byName[string(ct)]; ok {
		return counter.Count
	}
	return 0
}

// Total returns the number of counters across all types.
func (cs *Counters) Total() int {
	total := 0
	for _, counter := range cs.byName {
		total += counter.Count
	}
	return total
}

// Copy returns a deep copy of the collection.
func (cs *Counters) Copy() *Counters {
	out := NewCounters()
	for name, counter := range cs.byName {
		out.byName[name] = counter.Copy()
	}
	return out
}
