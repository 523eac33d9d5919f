// Package resolve models fallback searches as ordered lists of named strategies.
// The first strategy that reports success wins; the rest are never consulted.
package resolve

// Result is the tagged outcome of a Chain.
type Result struct {
	Value string
	// Source names the strategy that produced Value. Empty when nothing was found.
	Source string
	Found  bool
	// Tried lists every strategy consulted, in order, including the winner.
	Tried []string
}

// Strategy is one named way of finding a value.
type Strategy struct {
	Name    string
	Resolve func() (string, bool)
}

// Chain is an ordered list of strategies. Order is significant.
type Chain []Strategy

// Resolve runs the strategies in order and stops at the first success.
func (c Chain) Resolve() Result {
	var res Result
	for _, s := range c {
		res.Tried = append(res.Tried, s.Name)
		if v, ok := s.Resolve(); ok {
			res.Value = v
			res.Source = s.Name
			res.Found = true
			return res
		}
	}
	return res
}

// Fixed returns a strategy that succeeds with value when ok is true.
func Fixed(name, value string, ok bool) Strategy {
	return Strategy{
		Name: name,
		Resolve: func() (string, bool) {
			return value, ok
		},
	}
}

// Env returns a strategy that succeeds when the variable is set in lookup.
func Env(name, key string, lookup func(string) (string, bool)) Strategy {
	return Strategy{
		Name: name,
		Resolve: func() (string, bool) {
			return lookup(key)
		},
	}
}
