package thermo

import (
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// 通用气体常数 J/(mol·K)
const GasConstant = 8.314462618

// 熵的参考压力 Pa
const RefPressure = 101325.0

//go:embed data/species.json
var speciesFS embed.FS

// Species NASA 七系数多项式，低温段与高温段以 TMid 分界
type Species struct {
	Name      string     `json:"name"`
	MolarMass float64    `json:"molar_mass"` // g/mol
	TLow      float64    `json:"t_low"`
	TMid      float64    `json:"t_mid"`
	THigh     float64    `json:"t_high"`
	Low       [7]float64 `json:"low"`
	High      [7]float64 `json:"high"`
}

// 进程内只读的组分物性库
var species map[string]Species

func init() {
	data, err := speciesFS.ReadFile("data/species.json")
	if err != nil {
		panic(fmt.Sprintf("thermo: read species database: %v", err))
	}
	db, err := parseSpecies(data)
	if err != nil {
		panic(fmt.Sprintf("thermo: %v", err))
	}
	species = db
}

func parseSpecies(data []byte) (map[string]Species, error) {
	var list []Species
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse species database: %w", err)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	db := make(map[string]Species, len(list))
	for _, sp := range list {
		if sp.MolarMass <= 0 || !(sp.TLow < sp.TMid && sp.TMid < sp.THigh) {
			return nil, fmt.Errorf("species %q: bad molar mass or temperature range", sp.Name)
		}
		if _, ok := db[sp.Name]; ok {
			return nil, fmt.Errorf("species %q: duplicated", sp.Name)
		}
		db[sp.Name] = sp
	}
	return db, nil
}

// LookupSpecies 按名称查询组分
func LookupSpecies(name string) (Species, bool) {
	sp, ok := species[name]
	return sp, ok
}

// SpeciesNames 物性库内全部组分名，按字母序
func SpeciesNames() []string {
	names := make([]string, 0, len(species))
	for name := range species {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (sp Species) coeffs(T float64) *[7]float64 {
	if T < sp.TMid {
		return &sp.Low
	}
	return &sp.High
}

// CpR 无量纲比热 cp/R
func (sp Species) CpR(T float64) float64 {
	a := sp.coeffs(T)
	return a[0] + T*(a[1]+T*(a[2]+T*(a[3]+T*a[4])))
}

// HRT 无量纲焓 h/(RT)
func (sp Species) HRT(T float64) float64 {
	a := sp.coeffs(T)
	return a[0] + T*(a[1]/2+T*(a[2]/3+T*(a[3]/4+T*a[4]/5))) + a[5]/T
}

// SR 参考压力下的无量纲熵 s°/R
func (sp Species) SR(T float64) float64 {
	a := sp.coeffs(T)
	return a[0]*math.Log(T) + T*(a[1]+T*(a[2]/2+T*(a[3]/3+T*a[4]/4))) + a[6]
}
