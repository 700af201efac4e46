package engine

import (
	"fmt"
	"math"

	"turbojet/model"
)

const (
	tropopauseM  = 11000.0
	ceilingM     = 20000.0
	lapseRate    = 0.0065
	tTropopauseK = 216.65
	pTropopause  = 22632.06
	gravity      = 9.80665
	rAir         = 287.053
)

// StandardDay 国际标准大气，对流层与平流层下层，返回静温 K 与静压 Pa
func StandardDay(altitudeM float64) (float64, float64, error) {
	if math.IsNaN(altitudeM) || altitudeM < -500 || altitudeM > ceilingM {
		return 0, 0, fmt.Errorf("%w: altitude %.1f m outside standard atmosphere table", ErrInvalidParameter, altitudeM)
	}
	if altitudeM <= tropopauseM {
		T := model.TStdK - lapseRate*altitudeM
		return T, model.PStdPa * math.Pow(T/model.TStdK, 5.25588), nil
	}
	P := pTropopause * math.Exp(-gravity*(altitudeM-tropopauseM)/(rAir*tTropopauseK))
	return tTropopauseK, P, nil
}

// StandardDayFt 高度以英尺给出
func StandardDayFt(altitudeFt float64) (float64, float64, error) {
	return StandardDay(altitudeFt * model.FtToM)
}
