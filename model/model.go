package model

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// 消息类型
const (
	MsgDesign       = "design"
	MsgDesignDone   = "designDone"
	MsgOffDesign    = "offdesign"
	MsgOffDesignRes = "offdesignDone"
	MsgSweep        = "sweep"
	MsgSweepPoint   = "sweepPoint"
	MsgSweepDone    = "sweepDone"
	MsgStop         = "stop"
	MsgStopped      = "stopped"
	MsgError        = "error"
)

// 节流扫描请求，T4 以设计值的比例给出
type SweepReq struct {
	AltitudeFt float64   `json:"altitude_ft"`
	Mach       float64   `json:"mach"`
	Throttles  []float64 `json:"throttles"`
	Workers    int       `json:"workers"`
}

// 批量计算的一行输入
type Case struct {
	AltitudeFt float64 `json:"altitude_ft"`
	Mach       float64 `json:"mach"`
	Throttle   float64 `json:"throttle"`
}

// 单个扫描点或批量计算行的结果
type SweepPoint struct {
	Index      int     `json:"index"`
	AltitudeFt float64 `json:"altitude_ft"`
	Mach       float64 `json:"mach"`
	Throttle   float64 `json:"throttle"`
	T4R        float64 `json:"t4_r"`
	Converged  bool    `json:"converged"`
	Nc         float64 `json:"nc"`
	RLine      float64 `json:"r_line"`
	ThrustLbf  float64 `json:"thrust_lbf"`
	SFC        float64 `json:"sfc"`
	FAR        float64 `json:"far"`
	Choked     bool    `json:"choked"`
	Iterations int     `json:"iterations"`
	Error      string  `json:"error,omitempty"`
}
