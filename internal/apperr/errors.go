// Package apperr 定义订单台各模块共用的错误分类。
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 目标记录不存在（pending 已处理、客户/订单缺失）。
	ErrNotFound = errors.New("not found")
	// ErrValidation 入参缺失或非法，未发生任何写入。
	ErrValidation = errors.New("validation failed")
	// ErrAllocation 序号事务未能提交，未发出任何序号。
	ErrAllocation = errors.New("sequence allocation failed")
	// ErrCustomerCreate 转正过程中新建客户失败。
	ErrCustomerCreate = errors.New("customer creation failed")
	// ErrCommit 原子提交失败（前置条件不满足或写入失败），无部分生效。
	ErrCommit = errors.New("commit failed")
	// ErrDownstreamUnavailable 依赖的外部组件当前不可用。
	ErrDownstreamUnavailable = errors.New("downstream unavailable")
)

// ValidationError 标记具体缺失/非法的字段。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid 构造 ValidationError。
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AllocationError 标识失败的序列名。
type AllocationError struct {
	Sequence string
	Err      error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocate %s: %v", e.Sequence, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }

// CommitError 描述原子提交中失败的那一步。
type CommitError struct {
	Op  string
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s: %v", e.Op, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

func (e *CommitError) Is(target error) bool { return target == ErrCommit }

// NotFoundf 返回包装了 ErrNotFound 的错误。
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
