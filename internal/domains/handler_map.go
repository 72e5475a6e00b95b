package domains

import (
	"optima/recsync/internal/business"
	"optima/recsync/internal/framework"
	"optima/recsync/pkg/logger"
)

// Deps Handler 依赖集合（Manager 装配后注入）
type Deps struct {
	Log              logger.Logger
	RecommendService *business.RecommendService
}

// HandlerFactory Handler 构造函数类型
type HandlerFactory func(deps *Deps) framework.JobHandler

// HandlerMap 路由表（handler 名称 → 构造函数）
var HandlerMap = map[string]HandlerFactory{
	"idp_recommend": func(deps *Deps) framework.JobHandler {
		return GetProcess(deps.Log, deps.RecommendService)
	},

	// 未来扩展示例：
	// "idp_reindex": func(deps *Deps) framework.JobHandler { ... },
}
