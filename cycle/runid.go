package cycle

import (
	"encoding/json"

	"github.com/google/uuid"
)

var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("turbojet/cycle"))

// runID 由输入内容生成的确定性编号，相同输入得到相同编号
func runID(kind string, parts ...interface{}) string {
	data, err := json.Marshal(parts)
	if err != nil {
		return uuid.Nil.String()
	}
	return uuid.NewSHA1(runNamespace, append([]byte(kind+":"), data...)).String()
}
