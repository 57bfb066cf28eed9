package workflow

import "errors"

// 工作流错误定义
var (
	// ErrTaskNotFound 任务不存在
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidState 任务已处于终态,不允许再次裁决
	ErrInvalidState = errors.New("task already decided")

	// ErrUnknownDomain 未知业务域
	ErrUnknownDomain = errors.New("unknown approval domain")

	// ErrUnknownType 任务类型不属于所在业务域
	ErrUnknownType = errors.New("task type not valid for domain")

	// ErrInvalidStatus 非法的生命周期状态
	ErrInvalidStatus = errors.New("status must be pending, approved or rejected")

	// ErrInvalidDecision 非法的裁决动作
	ErrInvalidDecision = errors.New("decision must be approve or reject")

	// ErrForbidden 当前主体无权裁决该任务
	ErrForbidden = errors.New("principal not allowed to decide this task")
)
