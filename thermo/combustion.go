package thermo

import (
	"fmt"
	"sort"
	"sync"
)

// Fuel 碳氢燃料 CnHm
type Fuel struct {
	Name string
	C    float64
	H    float64
	LHV  float64 // 低热值 J/kg
}

// JetA 航空煤油替代物 C12H23，低热值 18400 BTU/lbm
var JetA = Fuel{Name: "C12H23", C: 12, H: 23, LHV: 18400 * 2326.0}

// MolarMass g/mol
func (f Fuel) MolarMass() float64 {
	return f.C*12.011 + f.H*1.008
}

var (
	airOnce sync.Once
	air     *Mixture
)

// Air 干空气，O2 0.21 / N2 0.79（摩尔）
func Air() *Mixture {
	airOnce.Do(func() {
		m, err := NewMixtureFromMoles(map[string]float64{"O2": 0.21, "N2": 0.79})
		if err != nil {
			panic(err)
		}
		air = m
	})
	return air
}

// Stoichiometric 化学恰当油气比
func (f Fuel) Stoichiometric(oxidizer *Mixture) float64 {
	o2 := oxidizer.MassFractions()["O2"] / 31.9988
	if o2 <= 0 {
		return 0
	}
	return o2 / (f.C + f.H/4) * f.MolarMass()
}

// Products 完全燃烧产物，far 为每 kg 氧化剂的燃料质量
func (f Fuel) Products(oxidizer *Mixture, far float64) (*Mixture, error) {
	if far < 0 {
		return nil, fmt.Errorf("products: negative fuel-air ratio %v", far)
	}
	if far == 0 {
		return oxidizer, nil
	}
	moles := make(map[string]float64, len(oxidizer.species)+2)
	for i, sp := range oxidizer.species {
		moles[sp.Name] = oxidizer.y[i] / sp.MolarMass
	}
	nf := far / f.MolarMass()
	moles["O2"] -= nf * (f.C + f.H/4)
	if moles["O2"] < 0 {
		return nil, fmt.Errorf("products: fuel-air ratio %.5f above stoichiometric %.5f",
			far, f.Stoichiometric(oxidizer))
	}
	moles["CO2"] += nf * f.C
	moles["H2O"] += nf * f.H / 2

	names := make([]string, 0, len(moles))
	for name := range moles {
		names = append(names, name)
	}
	sort.Strings(names)
	mass := make(map[string]float64, len(moles))
	for _, name := range names {
		sp, ok := LookupSpecies(name)
		if !ok {
			return nil, fmt.Errorf("products: unknown species %q", name)
		}
		mass[name] = moles[name] * sp.MolarMass
	}
	return NewMixture(mass)
}
