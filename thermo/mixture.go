package thermo

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Mixture 理想气体混合物，组成按质量分数给出，创建后不再修改
type Mixture struct {
	species []Species
	y       []float64 // 质量分数
	x       []float64 // 摩尔分数
	mw      float64   // kg/kmol
	r       float64   // J/(kg·K)
}

// NewMixture 按质量分数创建混合物，分数会被归一化
func NewMixture(massFractions map[string]float64) (*Mixture, error) {
	names := make([]string, 0, len(massFractions))
	for name, y := range massFractions {
		if y < 0 || math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("mixture: bad mass fraction %v for %s", y, name)
		}
		if y > 0 {
			names = append(names, name)
		}
	}
	// 按组分名排序后再累加，保证同一组成得到逐位相同的结果
	sort.Strings(names)
	total := 0.0
	for _, name := range names {
		total += massFractions[name]
	}
	if total <= 0 {
		return nil, fmt.Errorf("mixture: empty composition")
	}

	m := &Mixture{
		species: make([]Species, len(names)),
		y:       make([]float64, len(names)),
		x:       make([]float64, len(names)),
	}
	moles := 0.0
	for i, name := range names {
		sp, ok := LookupSpecies(name)
		if !ok {
			return nil, fmt.Errorf("mixture: unknown species %q", name)
		}
		m.species[i] = sp
		m.y[i] = massFractions[name] / total
		moles += m.y[i] / sp.MolarMass
	}
	for i, sp := range m.species {
		m.x[i] = m.y[i] / sp.MolarMass / moles
	}
	m.mw = 1 / moles
	m.r = GasConstant / m.mw * 1000
	return m, nil
}

// NewMixtureFromMoles 按摩尔分数创建混合物
func NewMixtureFromMoles(moleFractions map[string]float64) (*Mixture, error) {
	mass := make(map[string]float64, len(moleFractions))
	for name, x := range moleFractions {
		sp, ok := LookupSpecies(name)
		if !ok {
			return nil, fmt.Errorf("mixture: unknown species %q", name)
		}
		mass[name] = x * sp.MolarMass
	}
	return NewMixture(mass)
}

// R 比气体常数 J/(kg·K)
func (m *Mixture) R() float64 { return m.r }

// MolarMass kg/kmol
func (m *Mixture) MolarMass() float64 { return m.mw }

// MassFractions 返回质量分数的副本
func (m *Mixture) MassFractions() map[string]float64 {
	out := make(map[string]float64, len(m.species))
	for i, sp := range m.species {
		out[sp.Name] = m.y[i]
	}
	return out
}

// MoleFraction 单个组分的摩尔分数，不存在时为 0
func (m *Mixture) MoleFraction(name string) float64 {
	for i, sp := range m.species {
		if sp.Name == name {
			return m.x[i]
		}
	}
	return 0
}

// Cp 定压比热 J/(kg·K)
func (m *Mixture) Cp(T float64) float64 {
	sum := 0.0
	for i, sp := range m.species {
		sum += m.y[i] * sp.CpR(T) / sp.MolarMass
	}
	return sum * GasConstant * 1000
}

// H 比焓 J/kg，含生成焓
func (m *Mixture) H(T float64) float64 {
	sum := 0.0
	for i, sp := range m.species {
		sum += m.y[i] * sp.HRT(T) / sp.MolarMass
	}
	return sum * GasConstant * T * 1000
}

// S0 参考压力下的比熵 J/(kg·K)，含混合熵
func (m *Mixture) S0(T float64) float64 {
	sum := 0.0
	for i, sp := range m.species {
		sum += m.y[i] * (sp.SR(T) - math.Log(m.x[i])) / sp.MolarMass
	}
	return sum * GasConstant * 1000
}

// S 比熵 J/(kg·K)
func (m *Mixture) S(T, P float64) float64 {
	return m.S0(T) - m.r*math.Log(P/RefPressure)
}

// Gamma 比热比
func (m *Mixture) Gamma(T float64) float64 {
	cp := m.Cp(T)
	return cp / (cp - m.r)
}

func (m *Mixture) String() string {
	parts := make([]string, len(m.species))
	for i, sp := range m.species {
		parts[i] = fmt.Sprintf("%s:%.5f", sp.Name, m.y[i])
	}
	return strings.Join(parts, " ")
}
