package model

// 单位换算，内部计算统一用 SI，输入输出按英制习惯
const (
	RankineToKelvin = 1 / 1.8
	KelvinToRankine = 1.8

	PsiToPa = 6894.76
	LbmToKg = 0.453592
	LbfToN  = 4.44822
	FtToM   = 0.3048

	BtuPerLbmToJPerKg = 2326.0
	JPerKgToBtuPerLbm = 1 / BtuPerLbmToJPerKg

	SquareMToSquareIn = 1 / (0.0254 * 0.0254)
)

// 标准日参考状态，用于换算折合转速与折合流量
const (
	TStdK    = 288.15
	PStdPa   = 101325.0
	TStdR    = 518.67
	PStdPsia = 14.696
)

// 折合温度比 θ
func Theta(tt float64) float64 {
	return tt / TStdK
}

// 折合压力比 δ
func Delta(pt float64) float64 {
	return pt / PStdPa
}
