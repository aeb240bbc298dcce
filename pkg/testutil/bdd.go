package testutil

import "testing"

// Scenario runs Given/When/Then steps as subtests in order. Steps share
// state through the enclosing test, so once one fails the remaining steps
// are skipped instead of failing on the missing state.
type Scenario struct {
	t      *testing.T
	failed string
}

func NewScenario(t *testing.T) *Scenario {
	return &Scenario{t: t}
}

func (s *Scenario) Given(desc string, fn func(t *testing.T)) { s.step("Given "+desc, fn) }

func (s *Scenario) When(desc string, fn func(t *testing.T)) { s.step("When "+desc, fn) }

func (s *Scenario) Then(desc string, fn func(t *testing.T)) { s.step("Then "+desc, fn) }

func (s *Scenario) And(desc string, fn func(t *testing.T)) { s.step("And "+desc, fn) }

func (s *Scenario) step(name string, fn func(t *testing.T)) {
	s.t.Helper()
	if s.failed != "" {
		s.t.Run(name, func(t *testing.T) {
			t.Skipf("skipped after %q failed", s.failed)
		})
		return
	}
	if !s.t.Run(name, fn) {
		s.failed = name
	}
}
