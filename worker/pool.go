package worker // import "github.com/yomu-app/yomu/worker"

import (
	"github.com/yomu-app/yomu/model"
)

type WorkPool interface {
	Push(job model.ViewJob)
}
