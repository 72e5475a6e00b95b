package domains

import (
	"context"
	"errors"
	"fmt"
	"time"

	"optima/recsync/internal/business"
	"optima/recsync/internal/framework"
	"optima/recsync/pkg/errorutil"
	"optima/recsync/pkg/logger"
	"optima/recsync/pkg/model"
)

// GetProcess 返回核心处理函数（注入到 Consumer）
func GetProcess(log logger.Logger, svc *business.RecommendService) framework.JobHandler {
	return func(ctx context.Context, msg *framework.Message) *framework.Result {
		startTime := time.Now()

		// 1. 解码信封
		env, err := model.DecodeEnvelope(msg.Data)
		if err != nil {
			log.Errorf(ctx, "[GetProcess] decode envelope failed: %v", err)
			return &framework.Result{Outcome: framework.OutcomeMalformed, Err: err}
		}

		// 2. 注入任务标识到 Context
		ctx = context.WithValue(ctx, "job_id", env.JobID)
		log.Infof(ctx, "[GetProcess] Processing job: user_id=%s, idp_id=%s",
			env.Data.UserID, env.Data.IDPID)

		// 3. 执行业务（捕获 panic）
		var execErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf(ctx, "[GetProcess] handler panic: %v", r)
					execErr = fmt.Errorf("handler panic: %v", r)
				}
			}()

			execErr = svc.Execute(ctx, &business.RecommendInput{
				JobID:  env.JobID,
				UserID: env.Data.UserID,
				IDPID:  env.Data.IDPID,
			})
		}()

		// 4. 错误映射为处理结论
		result := classify(execErr)
		log.Infof(ctx, "[GetProcess] Processing complete: outcome=%s, duration=%v",
			result.Outcome, time.Since(startTime))

		return result
	}
}

// classify 错误映射为处理结论
// 实体缺失与其它不可重试错误是终态，转死信；未分类错误默认可重试，滞留待恢复
func classify(err error) *framework.Result {
	if err == nil {
		return &framework.Result{Outcome: framework.OutcomeOK}
	}

	if errors.Is(err, business.ErrUserNotFound) || errors.Is(err, business.ErrIDPNotFound) {
		return &framework.Result{Outcome: framework.OutcomeMissingEntity, Err: err}
	}

	if errorutil.Wrap(err).Retryable {
		return &framework.Result{Outcome: framework.OutcomePipelineError, Err: err}
	}
	return &framework.Result{Outcome: framework.OutcomeMissingEntity, Err: err}
}
